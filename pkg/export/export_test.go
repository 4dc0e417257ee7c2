package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Caja diaria 15/03/2024",
		Headers: []string{"Hora", "Alumno", "Monto"},
		Rows: []map[string]string{
			{"Hora": "10:30", "Alumno": "Ana Paz", "Monto": "900.00"},
			{"Hora": "11:00", "Alumno": "Luis Gómez", "Monto": "300.00"},
		},
		Summary: [][2]string{{"Efectivo", "1200.00"}, {"Total", "1200.00"}},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(out))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	// the blank separator line is skipped by the reader
	require.Len(t, records, 5)
	assert.Equal(t, []string{"Hora", "Alumno", "Monto"}, records[0])
	assert.Equal(t, []string{"11:00", "Luis Gómez", "300.00"}, records[2])
	assert.Equal(t, []string{"Efectivo", "1200.00"}, records[3])
	assert.Equal(t, []string{"Total", "1200.00"}, records[4])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestPDFExporterManyRowsPaginates(t *testing.T) {
	data := sampleDataset()
	for i := 0; i < 120; i++ {
		data.Rows = append(data.Rows, map[string]string{"Hora": "12:00", "Alumno": "Alumno", "Monto": "1.00"})
	}
	out, err := NewPDFExporter().Render(data)
	require.NoError(t, err)
	assert.Greater(t, bytes.Count(out, []byte("/Type /Page\n")), 1)
}

func TestFormatContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
	assert.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
}
