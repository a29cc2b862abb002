package executor

import (
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/wbrown/graphtype/concept"
	"github.com/wbrown/graphtype/ir"
)

// TableFormatter renders a Batch as a markdown table, one column per
// variable in columns order, for CLI result display and debugging.
type TableFormatter struct {
	MaxWidth int
}

// NewTableFormatter builds a formatter with the default column-truncation
// width.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{MaxWidth: 50}
}

// FormatBatch renders batch restricted to columns, labelled by name.
// Columns absent from a row print as blank cells rather than dropping the
// row, since an Optional or outer Negation step may leave some variables
// unbound.
func (tf *TableFormatter) FormatBatch(batch Batch, columns []ir.VariableID, names map[ir.VariableID]string) string {
	if len(batch) == 0 {
		return "_No rows_"
	}

	var b strings.Builder
	alignment := make([]tw.Align, len(columns))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(&b,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)

	headers := make([]string, len(columns))
	for i, v := range columns {
		if name, ok := names[v]; ok {
			headers[i] = name
		} else {
			headers[i] = fmt.Sprintf("$%d", v)
		}
	}
	table.Header(headers)

	for _, row := range batch {
		cells := make([]string, len(columns))
		for i, v := range columns {
			cells[i] = tf.formatValue(row[v])
		}
		table.Append(cells)
	}
	table.Render()

	fmt.Fprintf(&b, "\n_%d rows_\n", len(batch))
	return b.String()
}

func (tf *TableFormatter) formatValue(v concept.VariableValue) string {
	switch v.Kind {
	case concept.VarEmpty:
		return ""
	case concept.VarType:
		return v.Type.String()
	case concept.VarThing:
		return tf.truncate(v.Thing.String())
	case concept.VarValue:
		return tf.truncate(tf.formatRaw(v.Value))
	default:
		return ""
	}
}

func (tf *TableFormatter) formatRaw(val concept.Value) string {
	switch v := val.(type) {
	case nil:
		return "nil"
	case string:
		return v
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%.2f", v)
	case bool:
		return fmt.Sprintf("%t", v)
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	case concept.Identity:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (tf *TableFormatter) truncate(s string) string {
	if len(s) <= tf.MaxWidth {
		return s
	}
	return s[:tf.MaxWidth-3] + "..."
}
