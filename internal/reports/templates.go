// Package reports 生成四类报表的 CSV 模板并校验上传文件。
package reports

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Type 报表类型
type Type string

const (
	PatientVisits       Type = "patient_visits"
	CallOutcomes        Type = "call_outcomes"
	RevenueSummary      Type = "revenue_summary"
	AppointmentSchedule Type = "appointment_schedule"
)

// definition 模板定义：有序列名与两条示例行
type definition struct {
	Title   string
	Columns []string
	Samples [2][]string
}

var definitions = map[Type]definition{
	PatientVisits: {
		Title:   "Patient Visits",
		Columns: []string{"visit_date", "patient_name", "patient_id", "department", "doctor", "visit_type", "status"},
		Samples: [2][]string{
			{"2024-01-15", "John Doe", "P001", "Cardiology", "Dr. Smith", "Consultation", "Completed"},
			{"2024-01-16", "Jane Smith", "P002", "Orthopedics", "Dr. Johnson", "Follow-up", "Scheduled"},
		},
	},
	CallOutcomes: {
		Title:   "Call Outcomes",
		Columns: []string{"call_date", "phone_number", "campaign", "duration_seconds", "outcome", "agent", "notes"},
		Samples: [2][]string{
			{"2024-01-15", "9876543210", "Outbound", "185", "Appointment Booked", "AI Agent", "Booked for 2024-01-20"},
			{"2024-01-15", "9123456780", "Outbound", "42", "No Answer", "AI Agent", "Retry tomorrow"},
		},
	},
	RevenueSummary: {
		Title:   "Revenue Summary",
		Columns: []string{"month", "department", "consultations", "procedures", "revenue", "expenses", "net_income"},
		Samples: [2][]string{
			{"2024-01", "Cardiology", "120", "35", "450000", "180000", "270000"},
			{"2024-01", "Orthopedics", "95", "28", "380000", "150000", "230000"},
		},
	},
	AppointmentSchedule: {
		Title:   "Appointment Schedule",
		Columns: []string{"appointment_date", "time_slot", "patient_name", "doctor", "department", "appointment_type", "status"},
		Samples: [2][]string{
			{"2024-01-20", "10:00", "John Doe", "Dr. Smith", "Cardiology", "Consultation", "Confirmed"},
			{"2024-01-20", "11:30", "Jane Smith", "Dr. Johnson", "Orthopedics", "Follow-up", "Pending"},
		},
	},
}

// Types 按名称排序的全部报表类型
func Types() []Type {
	out := make([]Type, 0, len(definitions))
	for t := range definitions {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// Info 报表类型描述
type Info struct {
	Type    Type     `json:"type"`
	Title   string   `json:"title"`
	Columns []string `json:"columns"`
}

// Describe 返回全部类型的描述
func Describe() []Info {
	types := Types()
	out := make([]Info, 0, len(types))
	for _, t := range types {
		d := definitions[t]
		out = append(out, Info{Type: t, Title: d.Title, Columns: slices.Clone(d.Columns)})
	}
	return out
}

// Columns 返回类型的列名
func Columns(t Type) ([]string, bool) {
	d, ok := definitions[t]
	if !ok {
		return nil, false
	}
	return slices.Clone(d.Columns), true
}

// Template 生成 CSV 模板：表头加两条示例行。未知类型返回 nil, false。
func Template(t Type) ([]byte, bool) {
	d, ok := definitions[t]
	if !ok {
		return nil, false
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(d.Columns)
	for _, row := range d.Samples {
		_ = w.Write(row)
	}
	w.Flush()
	return buf.Bytes(), true
}

// Filename 模板下载文件名
func Filename(t Type) string {
	return string(t) + "_template.csv"
}

// =============================================================================
// 📤 上传校验
// =============================================================================

var (
	// ErrUnknownType 未知报表类型
	ErrUnknownType = errors.New("unknown report type")
	// ErrEmptyUpload 文件为空
	ErrEmptyUpload = errors.New("uploaded file is empty")
)

// HeaderMismatchError 表头与模板不一致
type HeaderMismatchError struct {
	Missing    []string
	Unexpected []string
}

func (e *HeaderMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing columns: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected columns: "+strings.Join(e.Unexpected, ", "))
	}
	if len(parts) == 0 {
		return "columns are out of order"
	}
	return strings.Join(parts, "; ")
}

// UploadSummary 上传校验结果
type UploadSummary struct {
	Type    Type     `json:"type"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

// ValidateUpload 解析 CSV，要求表头与模板完全一致（顺序相同），统计数据行数
func ValidateUpload(t Type, r io.Reader) (*UploadSummary, error) {
	d, ok := definitions[t]
	if !ok {
		return nil, ErrUnknownType
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = len(d.Columns)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyUpload
	}
	if err != nil {
		return nil, headerError(d.Columns, header, err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	if !slices.Equal(header, d.Columns) {
		return nil, diffColumns(d.Columns, header)
	}

	rows := 0
	for {
		_, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid CSV at data row %d: %w", rows+1, err)
		}
		rows++
	}

	return &UploadSummary{Type: t, Columns: slices.Clone(d.Columns), Rows: rows}, nil
}

func headerError(want, got []string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) && errors.Is(pe.Err, csv.ErrFieldCount) && got != nil {
		return diffColumns(want, got)
	}
	return fmt.Errorf("invalid CSV header: %w", err)
}

func diffColumns(want, got []string) *HeaderMismatchError {
	e := &HeaderMismatchError{}
	for _, c := range want {
		if !slices.Contains(got, c) {
			e.Missing = append(e.Missing, c)
		}
	}
	for _, c := range got {
		if !slices.Contains(want, c) {
			e.Unexpected = append(e.Unexpected, c)
		}
	}
	return e
}
