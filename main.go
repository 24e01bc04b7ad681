package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"classrooms/assign"
	"classrooms/sheets"
	"classrooms/solver"
)

//go:embed schema.sql
var schema string

func main() {
	for _, key := range []string{"PGCONN", "CLIENT_ID", "CLIENT_SECRET", "ADMINS"} {
		if os.Getenv(key) == "" {
			log.Fatalf("%s environment variable is required", key)
		}
	}

	db, err := sql.Open("postgres", os.Getenv("PGCONN"))
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	log.Println("connected to database")

	if _, err := db.Exec(schema); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}

	http.HandleFunc("POST /auth/google/callback", handleGoogleCallback)
	http.HandleFunc("GET /api/admin/check", handleAdminCheck)
	http.HandleFunc("GET /api/terms", handleListTerms(db))
	http.HandleFunc("POST /api/terms", handleCreateTerm(db))
	http.HandleFunc("DELETE /api/terms/{termID}", handleDeleteTerm(db))
	http.HandleFunc("GET /api/terms/{termID}/classrooms", handleListClassrooms(db))
	http.HandleFunc("POST /api/terms/{termID}/classrooms", handleUpsertClassroom(db))
	http.HandleFunc("DELETE /api/terms/{termID}/classrooms/{classroomID}", handleDeleteClassroom(db))
	http.HandleFunc("GET /api/terms/{termID}/sections", handleListSections(db))
	http.HandleFunc("POST /api/terms/{termID}/sections", handleUpsertSection(db))
	http.HandleFunc("DELETE /api/terms/{termID}/sections/{sectionID}", handleDeleteSection(db))
	http.HandleFunc("GET /api/terms/{termID}/overrides", handleListOverrides(db))
	http.HandleFunc("POST /api/terms/{termID}/overrides", handleCreateOverride(db))
	http.HandleFunc("DELETE /api/terms/{termID}/overrides/{overrideID}", handleDeleteOverride(db))
	http.HandleFunc("POST /api/terms/{termID}/import", handleImport(db))
	http.HandleFunc("POST /api/terms/{termID}/solve", handleSolve(db))
	http.HandleFunc("GET /api/terms/{termID}/assignments", handleListAssignments(db))
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			http.Error(w, "db unhealthy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintln(w, "ok")
	})

	log.Println("listening on :8080")
	log.Fatal(http.ListenAndServe(":8080", nil))
}

func handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	credential := r.FormValue("credential")
	if credential == "" {
		http.Error(w, "missing credential", http.StatusBadRequest)
		return
	}

	payload, err := idtoken.Validate(context.Background(), credential, os.Getenv("CLIENT_ID"))
	if err != nil {
		log.Println("failed to validate token:", err)
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	email := payload.Claims["email"].(string)

	profile := map[string]any{
		"email":   email,
		"name":    payload.Claims["name"],
		"picture": payload.Claims["picture"],
		"token":   signEmail(email),
	}

	writeJSON(w, profile)
}

func signEmail(email string) string {
	h := hmac.New(sha256.New, []byte(os.Getenv("CLIENT_SECRET")))
	h.Write([]byte(email))
	sig := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	return base64.RawURLEncoding.EncodeToString([]byte(email)) + "." + sig
}

func authorize(r *http.Request) (string, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return "", false
	}
	emailBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", false
	}
	email := string(emailBytes)
	if signEmail(email) != token {
		return "", false
	}
	return email, true
}

func isAdmin(email string) bool {
	return slices.ContainsFunc(strings.Split(os.Getenv("ADMINS"), ","), func(a string) bool {
		return strings.TrimSpace(a) == email
	})
}

func requireAdmin(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := authorize(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	if !isAdmin(email) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", false
	}
	return email, true
}

func requireTerm(db *sql.DB, w http.ResponseWriter, r *http.Request) (int64, bool) {
	if _, ok := requireAdmin(w, r); !ok {
		return 0, false
	}
	termID, err := strconv.ParseInt(r.PathValue("termID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid term ID", http.StatusBadRequest)
		return 0, false
	}
	var exists bool
	db.QueryRow("SELECT EXISTS(SELECT 1 FROM terms WHERE id = $1)", termID).Scan(&exists)
	if !exists {
		http.Error(w, "term not found", http.StatusNotFound)
		return 0, false
	}
	return termID, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func handleAdminCheck(w http.ResponseWriter, r *http.Request) {
	email, ok := authorize(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, map[string]bool{"admin": isAdmin(email)})
}

func handleListTerms(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		rows, err := db.Query("SELECT id, name FROM terms ORDER BY id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		type term struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		}
		var terms []term
		for rows.Next() {
			var t term
			if err := rows.Scan(&t.ID, &t.Name); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			terms = append(terms, t)
		}
		if terms == nil {
			terms = []term{}
		}
		writeJSON(w, terms)
	}
}

func handleCreateTerm(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		var id int64
		err := db.QueryRow("INSERT INTO terms (name) VALUES ($1) RETURNING id", body.Name).Scan(&id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"id": id, "name": body.Name})
	}
}

func handleDeleteTerm(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		termID, err := strconv.ParseInt(r.PathValue("termID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid term ID", http.StatusBadRequest)
			return
		}
		result, err := db.Exec("DELETE FROM terms WHERE id = $1", termID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			http.Error(w, "term not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleListClassrooms(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		termID, ok := requireTerm(db, w, r)
		if !ok {
			return
		}
		rows, err := db.Query("SELECT id, name, capacity, room_type, institute, board_type FROM classrooms WHERE term_id = $1 ORDER BY name", termID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		type classroom struct {
			ID        int64  `json:"id"`
			Name      string `json:"name"`
			Capacity  int    `json:"capacity"`
			RoomType  string `json:"room_type"`
			Institute string `json:"institute"`
			BoardType string `json:"board_type"`
		}
		var classrooms []classroom
		for rows.Next() {
			var c classroom
			if err := rows.Scan(&c.ID, &c.Name, &c.Capacity, &c.RoomType, &c.Institute, &c.BoardType); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			classrooms = append(classrooms, c)
		}
		if classrooms == nil {
			classrooms = []classroom{}
		}
		writeJSON(w, classrooms)
	}
}

func handleUpsertClassroom(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		termID, ok := requireTerm(db, w, r)
		if !ok {
			return
		}
		var body struct {
			Name      string `json:"name"`
			Capacity  int    `json:"capacity"`
			RoomType  string `json:"room_type"`
			Institute string `json:"institute"`
			BoardType string `json:"board_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		if strings.Contains(body.Name, "_") {
			http.Error(w, "name must not contain underscores", http.StatusBadRequest)
			return
		}
		var id int64
		err := db.QueryRow(`
			INSERT INTO classrooms (term_id, name, capacity, room_type, institute, board_type)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (term_id, name) DO UPDATE
			SET capacity = EXCLUDED.capacity, room_type = EXCLUDED.room_type,
			    institute = EXCLUDED.institute, board_type = EXCLUDED.board_type
			RETURNING id`,
			termID, body.Name, body.Capacity, assign.NormalizeRoomType(body.RoomType), body.Institute, body.BoardType).Scan(&id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"id": id, "name": body.Name})
	}
}

func handleDeleteClassroom(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		termID, ok := requireTerm(db, w, r)
		if !ok {
			return
		}
		classroomID, err := strconv.ParseInt(r.PathValue("classroomID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid classroom ID", http.StatusBadRequest)
			return
		}
		result, err := db.Exec("DELETE FROM classrooms WHERE id = $1 AND term_id = $2", classroomID, termID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			http.Error(w, "classroom not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleListSections(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		termID, ok := requireTerm(db, w, r)
		if !ok {
			return
		}
		rows, err := db.Query(`
			SELECT id, section_key, day, meeting_time, capacity, room_types, institute,
			       term_number, class_type, blackboard_restricted, professor,
			       graduation_course, course_id, course_name
			FROM sections WHERE term_id = $1 ORDER BY section_key`, termID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		type section struct {
			ID                   int64  `json:"id"`
			Key                  string `json:"section_key"`
			Day                  string `json:"day"`
			Time                 string `json:"time"`
			Capacity             int    `json:"capacity"`
			RoomTypes            string `json:"room_types"`
			Institute            string `json:"institute"`
			TermNumber           int    `json:"term_number"`
			ClassType            string `json:"class_type"`
			BlackboardRestricted bool   `json:"blackboard_restricted"`
			Professor            string `json:"professor"`
			GraduationCourse     string `json:"graduation_course"`
			CourseID             string `json:"course_id"`
			CourseName           string `json:"course_name"`
		}
		var sections []section
		for rows.Next() {
			var s section
			if err := rows.Scan(&s.ID, &s.Key, &s.Day, &s.Time, &s.Capacity, &s.RoomTypes, &s.Institute,
				&s.TermNumber, &s.ClassType, &s.BlackboardRestricted, &s.Professor,
				&s.GraduationCourse, &s.CourseID, &s.CourseName); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			sections = append(sections, s)
		}
		if sections == nil {
			sections = []section{}
		}
		writeJSON(w, sections)
	}
}

func handleUpsertSection(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		termID, ok := requireTerm(db, w, r)
		if !ok {
			return
		}
		var body struct {
			Key                  string `json:"section_key"`
			Day                  string `json:"day"`
			Time                 string `json:"time"`
			Capacity             int    `json:"capacity"`
			RoomTypes            string `json:"room_types"`
			Institute            string `json:"institute"`
			TermNumber           int    `json:"term_number"`
			ClassType            string `json:"class_type"`
			BlackboardRestricted bool   `json:"blackboard_restricted"`
			Professor            string `json:"professor"`
			GraduationCourse     string `json:"graduation_course"`
			CourseID             string `json:"course_id"`
			CourseName           string `json:"course_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Key == "" {
			http.Error(w, "section_key is required", http.StatusBadRequest)
			return
		}
		if strings.Contains(body.Key, "_") {
			http.Error(w, "section_key must not contain underscores", http.StatusBadRequest)
			return
		}
		if body.Day == "" || body.Time == "" {
			http.Error(w, "day and time are required", http.StatusBadRequest)
			return
		}
		var id int64
		err := db.QueryRow(`
			INSERT INTO sections (term_id, section_key, day, meeting_time, capacity, room_types,
			                      institute, term_number, class_type, blackboard_restricted,
			                      professor, graduation_course, course_id, course_name)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (term_id, section_key) DO UPDATE
			SET day = EXCLUDED.day, meeting_time = EXCLUDED.meeting_time,
			    capacity = EXCLUDED.capacity, room_types = EXCLUDED.room_types,
			    institute = EXCLUDED.institute, term_number = EXCLUDED.term_number,
			    class_type = EXCLUDED.class_type, blackboard_restricted = EXCLUDED.blackboard_restricted,
			    professor = EXCLUDED.professor, graduation_course = EXCLUDED.graduation_course,
			    course_id = EXCLUDED.course_id, course_name = EXCLUDED.course_name
			RETURNING id`,
			termID, body.Key, body.Day, body.Time, body.Capacity, body.RoomTypes,
			body.Institute, body.TermNumber, body.ClassType, body.BlackboardRestricted,
			body.Professor, body.GraduationCourse, body.CourseID, body.CourseName).Scan(&id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"id": id, "section_key": body.Key})
	}
}

func handleDeleteSection(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		termID, ok := requireTerm(db, w, r)
		if !ok {
			return
		}
		sectionID, err := strconv.ParseInt(r.PathValue("sectionID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid section ID", http.StatusBadRequest)
			return
		}
		result, err := db.Exec("DELETE FROM sections WHERE id = $1 AND term_id = $2", sectionID, termID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			http.Error(w, "section not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleListOverrides(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		termID, ok := requireTerm(db, w, r)
		if !ok {
			return
		}
		rows, err := db.Query("SELECT id, classroom_name, section_key, day, meeting_time FROM overrides WHERE term_id = $1 ORDER BY id", termID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		type override struct {
			ID        int64  `json:"id"`
			Classroom string `json:"classroom_name"`
			Section   string `json:"section_key"`
			Day       string `json:"day"`
			Time      string `json:"time"`
		}
		var overrides []override
		for rows.Next() {
			var o override
			if err := rows.Scan(&o.ID, &o.Classroom, &o.Section, &o.Day, &o.Time); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			overrides = append(overrides, o)
		}
		if overrides == nil {
			overrides = []override{}
		}
		writeJSON(w, overrides)
	}
}

func handleCreateOverride(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		termID, ok := requireTerm(db, w, r)
		if !ok {
			return
		}
		var body struct {
			Classroom string `json:"classroom_name"`
			Section   string `json:"section_key"`
			Day       string `json:"day"`
			Time      string `json:"time"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil ||
			body.Classroom == "" || body.Section == "" || body.Day == "" || body.Time == "" {
			http.Error(w, "classroom_name, section_key, day, and time are required", http.StatusBadRequest)
			return
		}
		var id int64
		err := db.QueryRow(`
			INSERT INTO overrides (term_id, classroom_name, section_key, day, meeting_time)
			VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			termID, body.Classroom, body.Section, body.Day, body.Time).Scan(&id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"id": id})
	}
}

func handleDeleteOverride(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		termID, ok := requireTerm(db, w, r)
		if !ok {
			return
		}
		overrideID, err := strconv.ParseInt(r.PathValue("overrideID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid override ID", http.StatusBadRequest)
			return
		}
		result, err := db.Exec("DELETE FROM overrides WHERE id = $1 AND term_id = $2", overrideID, termID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			http.Error(w, "override not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleImport(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		termID, ok := requireTerm(db, w, r)
		if !ok {
			return
		}
		var body struct {
			SpreadsheetID string `json:"spreadsheet_id"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.SpreadsheetID == "" {
			body.SpreadsheetID = os.Getenv("SPREADSHEET_ID")
		}
		if body.SpreadsheetID == "" {
			http.Error(w, "spreadsheet_id is required", http.StatusBadRequest)
			return
		}

		var opts []option.ClientOption
		if creds := os.Getenv("GOOGLE_CREDENTIALS"); creds != "" {
			opts = append(opts, option.WithCredentialsFile(creds))
		}
		loader, err := sheets.NewLoader(r.Context(), opts...)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		classrooms, err := loader.Classrooms(body.SpreadsheetID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		sections, err := loader.Sections(body.SpreadsheetID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		tx, err := db.Begin()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		if _, err := tx.Exec("DELETE FROM classrooms WHERE term_id = $1", termID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if _, err := tx.Exec("DELETE FROM sections WHERE term_id = $1", termID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		for _, c := range classrooms {
			if _, err := tx.Exec(`
				INSERT INTO classrooms (term_id, name, capacity, room_type, institute, board_type)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				termID, c.Name, c.Capacity, c.RoomType, c.Institute, c.BoardType); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		for _, s := range sections {
			if _, err := tx.Exec(`
				INSERT INTO sections (term_id, section_key, day, meeting_time, capacity, room_types,
				                      institute, term_number, class_type, blackboard_restricted,
				                      professor, graduation_course, course_id, course_name)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
				termID, s.Key, s.Day, s.Time, s.Capacity, s.RoomTypes,
				s.Institute, s.Term, s.ClassType, s.BlackboardRestricted,
				s.Professor, s.GraduationCourse, s.CourseID, s.CourseName); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		if err := tx.Commit(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"classrooms": len(classrooms), "sections": len(sections)})
	}
}

func loadTermData(db *sql.DB, termID int64) (map[string]*assign.Classroom, map[string]*assign.Section, []assign.Override, error) {
	classrooms := map[string]*assign.Classroom{}
	rows, err := db.Query("SELECT name, capacity, room_type, institute, board_type FROM classrooms WHERE term_id = $1", termID)
	if err != nil {
		return nil, nil, nil, err
	}
	defer rows.Close()
	for rows.Next() {
		c := &assign.Classroom{}
		if err := rows.Scan(&c.Name, &c.Capacity, &c.RoomType, &c.Institute, &c.BoardType); err != nil {
			return nil, nil, nil, err
		}
		classrooms[c.Name] = c
	}

	sections := map[string]*assign.Section{}
	srows, err := db.Query(`
		SELECT section_key, day, meeting_time, capacity, room_types, institute,
		       term_number, class_type, blackboard_restricted, professor,
		       graduation_course, course_id, course_name
		FROM sections WHERE term_id = $1`, termID)
	if err != nil {
		return nil, nil, nil, err
	}
	defer srows.Close()
	for srows.Next() {
		s := &assign.Section{}
		if err := srows.Scan(&s.Key, &s.Day, &s.Time, &s.Capacity, &s.RoomTypes, &s.Institute,
			&s.Term, &s.ClassType, &s.BlackboardRestricted, &s.Professor,
			&s.GraduationCourse, &s.CourseID, &s.CourseName); err != nil {
			return nil, nil, nil, err
		}
		sections[s.Key] = s
	}

	var overrides []assign.Override
	orows, err := db.Query("SELECT classroom_name, section_key, day, meeting_time FROM overrides WHERE term_id = $1", termID)
	if err != nil {
		return nil, nil, nil, err
	}
	defer orows.Close()
	for orows.Next() {
		var o assign.Override
		if err := orows.Scan(&o.Classroom, &o.Section, &o.Day, &o.Time); err != nil {
			return nil, nil, nil, err
		}
		overrides = append(overrides, o)
	}
	return classrooms, sections, overrides, nil
}

func solveConfigFromEnv() assign.Config {
	cfg := assign.DefaultConfig()
	if room := os.Getenv("FIXED_CLASSROOM"); room != "" {
		cfg.DesignatedClassroom = room
	}
	if marker := os.Getenv("BOARD_MARKER"); marker != "" {
		cfg.RestrictedBoardMarker = marker
	}
	return cfg
}

func engineFromEnv() *solver.CPSAT {
	cfg := solver.CPSATConfig{Diagnose: true}
	if v := os.Getenv("SOLVER_TIME_LIMIT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.TimeLimit = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("SOLVER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	return solver.NewCPSAT(cfg)
}

func handleSolve(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		termID, ok := requireTerm(db, w, r)
		if !ok {
			return
		}

		classrooms, sections, overrides, err := loadTermData(db, termID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if len(sections) == 0 {
			http.Error(w, "term has no sections", http.StatusBadRequest)
			return
		}

		outcome, err := assign.Solve(r.Context(), classrooms, sections, overrides, solveConfigFromEnv(), engineFromEnv())
		if err != nil {
			var infeasible *solver.InfeasibleError
			if errors.As(err, &infeasible) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(map[string]any{
					"error":     "no feasible assignment exists",
					"conflicts": infeasible.Conflicts,
				})
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		tx, err := db.Begin()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		if _, err := tx.Exec("DELETE FROM assignments WHERE term_id = $1", termID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if _, err := tx.Exec("DELETE FROM solve_diagnostics WHERE term_id = $1", termID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		for _, row := range outcome.Rows {
			if _, err := tx.Exec(`
				INSERT INTO assignments (term_id, classroom_name, section_key, professor,
				                         graduation_course, course_id, course_name, term_number, day, meeting_time)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				termID, row.Classroom, row.Section, row.Professor,
				row.GraduationCourse, row.CourseID, row.CourseName, row.Term, row.Day, row.Time); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		for _, entry := range outcome.CapacityDiagnostics {
			if _, err := tx.Exec("INSERT INTO solve_diagnostics (term_id, kind, entry) VALUES ($1, 'capacity', $2)", termID, entry); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		for _, entry := range outcome.OverrunDiagnostics {
			if _, err := tx.Exec("INSERT INTO solve_diagnostics (term_id, kind, entry) VALUES ($1, 'overrun', $2)", termID, entry); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		if err := tx.Commit(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, map[string]any{
			"objective":   outcome.Objective,
			"optimal":     outcome.Optimal,
			"assignments": len(outcome.Rows),
			"overruns":    len(outcome.OverrunDiagnostics),
		})
	}
}

func handleListAssignments(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		termID, ok := requireTerm(db, w, r)
		if !ok {
			return
		}
		rows, err := db.Query(`
			SELECT classroom_name, section_key, professor, graduation_course, course_id,
			       course_name, term_number, day, meeting_time
			FROM assignments WHERE term_id = $1
			ORDER BY classroom_name, day, meeting_time`, termID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		type assignment struct {
			Classroom        string `json:"classroom_name"`
			Section          string `json:"section_key"`
			Professor        string `json:"professor"`
			GraduationCourse string `json:"graduation_course"`
			CourseID         string `json:"course_id"`
			CourseName       string `json:"course_name"`
			TermNumber       int    `json:"term_number"`
			Day              string `json:"day"`
			Time             string `json:"time"`
		}
		var assignments []assignment
		for rows.Next() {
			var a assignment
			if err := rows.Scan(&a.Classroom, &a.Section, &a.Professor, &a.GraduationCourse, &a.CourseID,
				&a.CourseName, &a.TermNumber, &a.Day, &a.Time); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			assignments = append(assignments, a)
		}
		if assignments == nil {
			assignments = []assignment{}
		}
		writeJSON(w, assignments)
	}
}
