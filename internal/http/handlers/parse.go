package handlers

import (
	"encoding/csv"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/atende-insights/backend/internal/service"
)

// fieldAliases maps normalized upload headers to the canonical field names
// the normalizer expects, covering both camelCase exports and the raw
// Portuguese column names of the source system.
var fieldAliases = map[string]string{
	"id":                    "id",
	"contato":               "contato",
	"identificador":         "identificador",
	"protocolo":             "protocolo",
	"canal":                 "canal",
	"tipocanal":             "tipoCanal",
	"tipo de canal":         "tipoCanal",
	"resumoconversa":        "resumoConversa",
	"resumo da conversa":    "resumoConversa",
	"casa":                  "casa",
	"datahorainicio":        "dataHoraInicio",
	"data e hora de inicio": "dataHoraInicio",
	"data e hora de início": "dataHoraInicio",
	"datahorafim":           "dataHoraFim",
	"data e hora de fim":    "dataHoraFim",
}

func parseCSVRows(file *multipart.FileHeader) ([]service.RawRow, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	headers, err := reader.Read()
	if err != nil {
		return nil, errors.New("failed to read header")
	}
	fields := headerFields(headers)

	var out []service.RawRow
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rowFromRecord(rec, fields))
	}
	return out, nil
}

func parseXLSXRows(file *multipart.FileHeader) ([]service.RawRow, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	book, err := excelize.OpenReader(f)
	if err != nil {
		return nil, err
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("sheet is empty")
	}
	fields := headerFields(rows[0])

	var out []service.RawRow
	for _, rec := range rows[1:] {
		out = append(out, rowFromRecord(rec, fields))
	}
	return out, nil
}

// headerFields maps each column position to its canonical field name;
// unknown columns map to "" and are dropped.
func headerFields(headers []string) []string {
	fields := make([]string, len(headers))
	for i, h := range headers {
		fields[i] = fieldAliases[normalizeHeader(h)]
	}
	return fields
}

func rowFromRecord(rec []string, fields []string) service.RawRow {
	row := service.RawRow{}
	for i, field := range fields {
		if field == "" || i >= len(rec) {
			continue
		}
		row[field] = strings.TrimSpace(rec[i])
	}
	return row
}

func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\uFEFF", "")
	return strings.ToLower(strings.TrimSpace(h))
}
