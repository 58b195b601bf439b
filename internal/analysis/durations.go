package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/casescan/internal/clinical"
)

// DefaultDurationDivisor converts the second-based timing columns into the
// reported duration unit. The analysis has always divided by 60 while
// labelling the result hours; the divisor is configurable rather than
// silently changed to 3600.
const DefaultDurationDivisor = 60

// ComputeDurations returns a copy of t with anesthesia and surgery durations
// added to every record. A duration is missing when either timing is.
func ComputeDurations(t *clinical.Table, divisor float64) (*clinical.Table, error) {
	if divisor <= 0 || math.IsNaN(divisor) || math.IsInf(divisor, 0) {
		return nil, fmt.Errorf("invalid duration divisor %v", divisor)
	}
	recs := make([]clinical.Record, 0, len(t.Records))
	for _, r := range t.Records {
		out := r.With(clinical.ColAneDuration, elapsed(r, clinical.ColAneStart, clinical.ColAneEnd, divisor))
		out[clinical.ColOpDuration] = elapsed(r, clinical.ColOpStart, clinical.ColOpEnd, divisor)
		recs = append(recs, out)
	}
	return t.Derive(recs, clinical.DerivedColumns...), nil
}

func elapsed(r clinical.Record, startCol, endCol string, divisor float64) clinical.Value {
	start, ok1 := r.Get(startCol).Float()
	end, ok2 := r.Get(endCol).Float()
	if !ok1 || !ok2 {
		return clinical.Value{}
	}
	return clinical.NumberValue((end - start) / divisor)
}

// ProcedureAverage is the mean duration of one procedure.
type ProcedureAverage struct {
	Procedure string
	Cases     int
	// Averages over the cases with a known duration; NaN when none.
	AvgAnesthesia float64
	AvgSurgery    float64
}

// AverageDurationsByProcedure groups records carrying durations by
// procedure name. Records without a procedure name are dropped.
func AverageDurationsByProcedure(recs []clinical.Record) []ProcedureAverage {
	type acc struct {
		cases         int
		aneSum, opSum float64
		aneN, opN     int
	}
	groups := map[string]*acc{}
	for _, r := range recs {
		name := r.Get(clinical.ColOpName)
		if name.IsMissing() {
			continue
		}
		a := groups[name.Raw]
		if a == nil {
			a = &acc{}
			groups[name.Raw] = a
		}
		a.cases++
		if x, ok := r.Get(clinical.ColAneDuration).Float(); ok {
			a.aneSum += x
			a.aneN++
		}
		if x, ok := r.Get(clinical.ColOpDuration).Float(); ok {
			a.opSum += x
			a.opN++
		}
	}
	out := make([]ProcedureAverage, 0, len(groups))
	for name, a := range groups {
		out = append(out, ProcedureAverage{
			Procedure:     name,
			Cases:         a.cases,
			AvgAnesthesia: mean(a.aneSum, a.aneN),
			AvgSurgery:    mean(a.opSum, a.opN),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Procedure < out[j].Procedure })
	return out
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// ProcedureAverages adapts the averages to the sink row source.
type ProcedureAverages []ProcedureAverage

func (p ProcedureAverages) Header() []string {
	return []string{"opname", "average_anes_time(hrs)", "average_op_time(hrs)", "cases"}
}

func (p ProcedureAverages) Rows() [][]string {
	out := make([][]string, 0, len(p))
	for _, a := range p {
		out = append(out, []string{a.Procedure, formatFloat(a.AvgAnesthesia), formatFloat(a.AvgSurgery), fmt.Sprint(a.Cases)})
	}
	return out
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return clinical.NumberValue(f).Raw
}

// FilterByProcedure returns the records whose procedure name equals name.
func FilterByProcedure(recs []clinical.Record, name string) []clinical.Record {
	var out []clinical.Record
	for _, r := range recs {
		if v := r.Get(clinical.ColOpName); !v.IsMissing() && v.Raw == name {
			out = append(out, r)
		}
	}
	return out
}
