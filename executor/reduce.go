package executor

import (
	"math"
	"sort"

	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
)

// reduceBatch groups batch by groupBy's variables (a single ungrouped
// row if empty) and computes each reducer's aggregate per group.
func reduceBatch(batch Batch, reducers []Reducer, groupBy []ir.VariableID) (Batch, error) {
	groups := make(map[string][]Row)
	var order []string
	groupRow := make(map[string]Row)
	for _, row := range batch {
		key := rowKey(projectRow(row, groupBy))
		if _, ok := groups[key]; !ok {
			order = append(order, key)
			groupRow[key] = projectRow(row, groupBy)
		}
		groups[key] = append(groups[key], row)
	}
	if len(batch) == 0 && len(groupBy) == 0 {
		order = []string{""}
		groups[""] = nil
		groupRow[""] = Row{}
	}

	out := make(Batch, 0, len(order))
	for _, key := range order {
		rows := groups[key]
		result := groupRow[key].Clone()
		for _, r := range reducers {
			val, err := applyReducer(r, rows)
			if err != nil {
				return nil, err
			}
			result[r.Output] = val
		}
		out = append(out, result)
	}
	return out, nil
}

func projectRow(row Row, keep []ir.VariableID) Row {
	out := make(Row, len(keep))
	for _, v := range keep {
		if val, ok := row[v]; ok {
			out[v] = val
		}
	}
	return out
}

func applyReducer(r Reducer, rows []Row) (concept.VariableValue, error) {
	if r.Kind == ReduceCount {
		return concept.VariableValue{Kind: concept.VarValue, Value: concept.LongValue(int64(len(rows)))}, nil
	}

	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		v, ok := row[r.Input]
		if !ok {
			continue
		}
		n, ok := numericValue(v)
		if !ok {
			return concept.VariableValue{}, compileError("reducer requires a numeric input variable")
		}
		values = append(values, n)
	}
	if len(values) == 0 {
		return concept.VariableValue{Kind: concept.VarEmpty}, nil
	}

	switch r.Kind {
	case ReduceSum:
		return numericResult(sum(values)), nil
	case ReduceMax:
		return numericResult(maxOf(values)), nil
	case ReduceMin:
		return numericResult(minOf(values)), nil
	case ReduceMean:
		return numericResult(sum(values) / float64(len(values))), nil
	case ReduceMedian:
		return numericResult(median(values)), nil
	case ReduceStdev:
		return numericResult(stdev(values)), nil
	default:
		return concept.VariableValue{}, compileError("unknown reducer kind %d", r.Kind)
	}
}

func numericResult(f float64) concept.VariableValue {
	return concept.VariableValue{Kind: concept.VarValue, Value: concept.DoubleValue(f)}
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func stdev(values []float64) float64 {
	mean := sum(values) / float64(len(values))
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
