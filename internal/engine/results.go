package engine

import "github.com/roach88/qprog/internal/ir"

// Execution returns the latest record of circuit name on device. An empty
// device means the last-used device.
func (p *Program) Execution(name, device string) (ir.ExecutionRecord, error) {
	if device == "" {
		device = p.lastDevice
	}
	entry, err := p.catalog.get(name)
	if err != nil {
		return ir.ExecutionRecord{}, err
	}
	rec, ok := entry.executions[device]
	if !ok {
		e := NewNotFoundError("execution", name)
		e.Circuit, e.Device = name, device
		e.Message = "no execution recorded"
		return ir.ExecutionRecord{}, e
	}
	return rec, nil
}

// CompiledQASM returns the compiled source that ran for name on device.
func (p *Program) CompiledQASM(name, device string) (string, error) {
	rec, err := p.Execution(name, device)
	if err != nil {
		return "", err
	}
	return rec.CompiledSource, nil
}

// Result returns the raw result payload for name on device.
func (p *Program) Result(name, device string) (*ir.Result, error) {
	rec, err := p.Execution(name, device)
	if err != nil {
		return nil, err
	}
	if rec.Result == nil {
		return nil, &Error{
			Code:    ErrCodeNotFound,
			Message: "execution has no result (status " + string(rec.Status) + ")",
			Circuit: name,
			Device:  rec.Device,
		}
	}
	return rec.Result, nil
}

// Data returns the data section of the result for name on device.
func (p *Program) Data(name, device string) (ir.ResultData, error) {
	res, err := p.Result(name, device)
	if err != nil {
		return ir.ResultData{}, err
	}
	return res.Data, nil
}

// Counts returns the counts table for name on device.
func (p *Program) Counts(name, device string) (ir.Counts, error) {
	rec, err := p.Execution(name, device)
	if err != nil {
		return nil, err
	}
	data, err := p.Data(name, rec.Device)
	if err != nil {
		return nil, err
	}
	if data.Counts == nil {
		return nil, &Error{
			Code:    ErrCodeNotFound,
			Message: "result has no counts",
			Circuit: name,
			Device:  rec.Device,
		}
	}
	return data.Counts, nil
}

// AverageData computes the mean of a diagonal observable over the counts of
// name on the last-used device:
//
//	sum_i counts[i] * observable[i] / total
//
// where total is the sum of all observed counts. Bitstrings present in only
// one of counts and observable are skipped.
func (p *Program) AverageData(name string, observable map[string]float64) (float64, error) {
	counts, err := p.Counts(name, "")
	if err != nil {
		return 0, err
	}
	total := counts.Total()
	if total == 0 {
		return 0, nil
	}
	var sum float64
	for key, n := range counts {
		if v, ok := observable[key]; ok {
			sum += float64(n) * v / float64(total)
		}
	}
	return sum, nil
}
