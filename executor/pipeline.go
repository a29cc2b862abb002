package executor

import (
	"sort"

	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/diagnostics"
	"github.com/wbrown/graphtype/ir"
	"github.com/wbrown/graphtype/storage"
)

// RunPipeline runs every stage of a compiled Pipeline in sequence,
// feeding each stage's output batch to the next. Write stages
// (Insert/Update/Put/Delete) require txn to be non-nil.
func (ex *Executor) RunPipeline(p Pipeline, txn storage.WriteSnapshot) (Batch, error) {
	batch := Batch{{}}
	for _, stage := range p.Stages {
		var err error
		batch, err = ex.runStage(stage, batch, txn)
		if err != nil {
			return nil, err
		}
		if err := ex.interrupt.Check(); err != nil {
			return batch, err
		}
	}
	return batch, nil
}

func (ex *Executor) runStage(stage ExecutableStage, batch Batch, txn storage.WriteSnapshot) (Batch, error) {
	switch s := stage.(type) {
	case MatchStage:
		return ex.RunMatch(s.Plan, batch)
	case SelectStage:
		return projectBatch(batch, s.Keep), nil
	case SortStage:
		return sortBatch(batch, s.By), nil
	case OffsetStage:
		return offsetBatch(batch, s.Skip), nil
	case LimitStage:
		return limitBatch(batch, s.Max), nil
	case DistinctStage:
		return distinctBatch(batch), nil
	case RequireStage:
		return requireBatch(batch, s.Variables)
	case ReduceStage:
		return reduceBatch(batch, s.Reducers, s.GroupBy)
	case InsertStage:
		if txn == nil {
			return nil, compileError("insert stage requires a write transaction")
		}
		ex.traceWrites(diagnostics.WriteInsert, len(s.Writes), len(batch))
		return runInsert(txn, ex.tm, s.Writes, s.VariableTypes, batch)
	case PutStage:
		if txn == nil {
			return nil, compileError("put stage requires a write transaction")
		}
		matched, err := ex.RunMatch(s.Match, batch)
		if err != nil {
			return nil, err
		}
		if len(matched) > 0 {
			return matched, nil
		}
		ex.traceWrites(diagnostics.WriteInsert, len(s.Inserts), len(batch))
		return runInsert(txn, ex.tm, s.Inserts, s.VariableTypes, batch)
	case UpdateStage:
		if txn == nil {
			return nil, compileError("update stage requires a write transaction")
		}
		ex.traceWrites(diagnostics.WriteDelete, len(s.Deletes), len(batch))
		deleted, err := runDelete(txn, ex.tm, s.Deletes, s.VariableTypes, batch)
		if err != nil {
			return nil, err
		}
		ex.traceWrites(diagnostics.WriteInsert, len(s.Inserts), len(deleted))
		return runInsert(txn, ex.tm, s.Inserts, s.VariableTypes, deleted)
	case DeleteStage:
		if txn == nil {
			return nil, compileError("delete stage requires a write transaction")
		}
		ex.traceWrites(diagnostics.WriteDelete, len(s.Deletes), len(batch))
		return runDelete(txn, ex.tm, s.Deletes, s.VariableTypes, batch)
	default:
		return nil, compileError("%T is not an executable stage", stage)
	}
}

func (ex *Executor) traceWrites(name string, writeCount, rowCount int) {
	ex.trace.Add(diagnostics.Event{
		Name: name,
		Data: map[string]interface{}{"constraint": writeCount, "rows": rowCount},
	})
}

func projectBatch(batch Batch, keep []ir.VariableID) Batch {
	out := make(Batch, 0, len(batch))
	for _, row := range batch {
		next := make(Row, len(keep))
		for _, v := range keep {
			if val, ok := row[v]; ok {
				next[v] = val
			}
		}
		out = append(out, next)
	}
	return out
}

func sortBatch(batch Batch, by []SortKey) Batch {
	out := make(Batch, len(batch))
	copy(out, batch)
	sort.SliceStable(out, func(i, j int) bool {
		for _, key := range by {
			c := compareRowValue(out[i][key.Variable], out[j][key.Variable])
			if key.Descending {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
	return out
}

func offsetBatch(batch Batch, skip uint64) Batch {
	if uint64(len(batch)) <= skip {
		return Batch{}
	}
	return batch[skip:]
}

func limitBatch(batch Batch, max uint64) Batch {
	if uint64(len(batch)) <= max {
		return batch
	}
	return batch[:max]
}

func distinctBatch(batch Batch) Batch {
	seen := make(map[string]bool, len(batch))
	out := make(Batch, 0, len(batch))
	for _, row := range batch {
		key := rowKey(row)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}

func requireBatch(batch Batch, vars []ir.VariableID) (Batch, error) {
	for _, row := range batch {
		ok := true
		for _, v := range vars {
			if _, bound := row[v]; !bound {
				ok = false
				break
			}
		}
		if ok {
			return batch, nil
		}
	}
	return nil, compileError("require: no row bound every required variable")
}

// rowKey builds a stable string key for a row's current variable
// bindings, used to deduplicate in DistinctStage and to group in
// ReduceStage. Row map iteration order is non-deterministic in Go, so
// the keys are sorted before joining.
func rowKey(row Row) string {
	ids := make([]ir.VariableID, 0, len(row))
	for id := range row {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var b []byte
	for _, id := range ids {
		b = append(b, byte(id), byte(id>>8), byte(id>>16), byte(id>>24))
		b = append(b, valueBytes(row[id])...)
		b = append(b, 0)
	}
	return string(b)
}

func valueBytes(v concept.VariableValue) []byte {
	switch v.Kind {
	case concept.VarType:
		return []byte(v.Type.String())
	case concept.VarThing:
		return v.Thing.Bytes()
	case concept.VarValue:
		if s, ok := v.Value.(string); ok {
			return []byte(s)
		}
		return []byte(v.String())
	default:
		return nil
	}
}
