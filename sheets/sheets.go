// Package sheets pulls classroom and section data from the planning
// spreadsheet the allocation staff maintain.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	log "github.com/golang/glog"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"classrooms/assign"
)

const (
	classroomsRange = "salas!A:L"
	sectionsRange   = "alocacao!A:J"
)

type Loader struct {
	svc *sheetsapi.Service
}

// NewLoader builds a loader. Pass option.WithCredentialsFile or similar;
// with no options the client falls back to application default
// credentials.
func NewLoader(ctx context.Context, opts ...option.ClientOption) (*Loader, error) {
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return &Loader{svc: svc}, nil
}

// Classrooms loads available rooms from the "salas" tab. The real
// capacity column wins over the registrar's when both are present.
func (l *Loader) Classrooms(spreadsheetID string) (map[string]*assign.Classroom, error) {
	rows, err := l.readTable(spreadsheetID, classroomsRange)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*assign.Classroom, len(rows))
	for _, row := range rows {
		if !strings.EqualFold(row["Disponível"], "TRUE") {
			continue
		}
		name := row["Nome"]
		if name == "" {
			continue
		}
		capacity := coerceInt(row["Capacidade real"])
		if capacity == 0 {
			capacity = coerceInt(row["Capacidade SIGA"])
		}
		out[name] = &assign.Classroom{
			Name:      name,
			Capacity:  capacity,
			RoomType:  assign.NormalizeRoomType(row["Tipo sala"]),
			Institute: row["Instituto responsável"],
			BoardType: row["Tipo quadro"],
		}
	}
	return out, nil
}

// Sections loads the term's teaching sections from the "alocacao" tab.
// Rows without a day or time cannot be scheduled and are skipped.
func (l *Loader) Sections(spreadsheetID string) (map[string]*assign.Section, error) {
	rows, err := l.readTable(spreadsheetID, sectionsRange)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*assign.Section, len(rows))
	for i, row := range rows {
		key := row["Chave"]
		if key == "" {
			key = strconv.Itoa(i + 1)
		}
		if row["Dia da semana"] == "" || row["Horário"] == "" {
			log.Warningf("section %s has no schedule, skipped", key)
			continue
		}
		out[key] = &assign.Section{
			Key:                  key,
			Day:                  row["Dia da semana"],
			Time:                 row["Horário"],
			Capacity:             coerceInt(row["Qtd alunos"]),
			RoomTypes:            row["Tipo sala"],
			Institute:            row["Instituto responsável"],
			Term:                 coerceInt(row["Período"]),
			ClassType:            row["Tipo turma"],
			BlackboardRestricted: strings.EqualFold(row["Restrição quadro"], "TRUE"),
			Professor:            row["Nome curto professor"],
			GraduationCourse:     row["Curso"],
			CourseID:             row["Código disciplina"],
			CourseName:           row["Nome disciplina"],
		}
	}
	return out, nil
}

// readTable reads a header-plus-rows range into maps keyed by header.
func (l *Loader) readTable(spreadsheetID, readRange string) ([]map[string]string, error) {
	resp, err := l.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", readRange, err)
	}
	if len(resp.Values) < 2 {
		return nil, nil
	}
	headers := make([]string, len(resp.Values[0]))
	for i, h := range resp.Values[0] {
		headers[i] = strings.TrimSpace(fmt.Sprint(h))
	}
	rows := make([]map[string]string, 0, len(resp.Values)-1)
	for _, raw := range resp.Values[1:] {
		row := make(map[string]string, len(headers))
		for i, cell := range raw {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(fmt.Sprint(cell))
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func coerceInt(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return v
}
