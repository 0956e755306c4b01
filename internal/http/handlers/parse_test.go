package handlers

import (
	"bytes"
	"mime/multipart"
	"testing"
)

func TestParseCSVRowsHeaderAliases(t *testing.T) {
	content := "\uFEFFid,contato,protocolo,canal,tipo de canal,resumo da conversa,casa,data e hora de inicio,data e hora de fim\n" +
		"1,Maria,P-100,Chat,Web,preciso de boleto,Matriz,2024-01-01T10:00:00,2024-01-01T10:15:00\n"
	fh := makeMultipartFile(t, "file", "export.csv", content)

	rows, err := parseCSVRows(fh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row["id"] != "1" || row["tipoCanal"] != "Web" || row["resumoConversa"] != "preciso de boleto" {
		t.Fatalf("aliases not mapped: %+v", row)
	}
	if row["dataHoraInicio"] != "2024-01-01T10:00:00" || row["dataHoraFim"] != "2024-01-01T10:15:00" {
		t.Fatalf("timestamp columns not mapped: %+v", row)
	}
}

func TestParseCSVRowsDropsUnknownColumns(t *testing.T) {
	content := "id,dataHoraInicio,dataHoraFim,observacao\n1,2024-01-01T10:00:00,2024-01-01T10:05:00,ignorar\n"
	fh := makeMultipartFile(t, "file", "export.csv", content)

	rows, err := parseCSVRows(fh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := rows[0]["observacao"]; ok {
		t.Fatalf("unknown column should be dropped: %+v", rows[0])
	}
}

func makeMultipartFile(t *testing.T, fieldName, filename, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(int64(buf.Len()))
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	files := form.File[fieldName]
	if len(files) == 0 {
		t.Fatalf("no file headers found")
	}
	return files[0]
}
