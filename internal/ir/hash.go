package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
)

// Domain prefixes for content-addressed identity.
const (
	DomainRecord = "qprog/record/v1"
	DomainSource = "qprog/source/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SourceFingerprint returns a stable identifier for compiled source text.
func SourceFingerprint(source string) string {
	return hashWithDomain(DomainSource, []byte(source))
}

// RecordID computes the content-addressed ID of an execution record within
// a dispatch cycle. Results are excluded: the ID names what was run, not
// what came back.
func RecordID(runID string, rec ExecutionRecord) (string, error) {
	obj := map[string]any{
		"run_id":      runID,
		"circuit":     rec.Circuit,
		"device":      rec.Device,
		"source":      SourceFingerprint(rec.CompiledSource),
		"basis_gates": rec.BasisGates,
		"coupling":    couplingAsCanonical(rec.CouplingMap),
		"shots":       rec.Shots,
		"max_credits": rec.MaxCredits,
	}
	if rec.Seed != nil {
		obj["seed"] = *rec.Seed
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("RecordID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRecord, canonical), nil
}

func couplingAsCanonical(m CouplingMap) map[string]any {
	out := make(map[string]any, len(m))
	for k, targets := range m {
		sorted := append([]int(nil), targets...)
		sort.Ints(sorted)
		arr := make([]any, len(sorted))
		for i, t := range sorted {
			arr[i] = t
		}
		out[strconv.Itoa(k)] = arr
	}
	return out
}
