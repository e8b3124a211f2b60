package repository

import (
	"path/filepath"
	"testing"
	"time"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	return db
}

func TestVocabAndWords(t *testing.T) {
	db := newTestDB(t)
	vocabs := NewVocabRepository(db)
	words := NewWordRepository(db)

	vocab, err := vocabs.CreateVocab("Animals", "four legs")
	if err != nil {
		t.Fatalf("CreateVocab() error = %v", err)
	}

	for _, w := range []models.Word{
		{English: "cat", Korean: "고양이"},
		{English: "dog", Korean: "개", Difficulty: models.DifficultyEasy},
		{English: "horse", Korean: "말", Difficulty: "bogus"},
	} {
		if _, err := words.AddWord(vocab.ID, w); err != nil {
			t.Fatalf("AddWord(%s) error = %v", w.English, err)
		}
	}

	got, err := vocabs.GetVocabByID(vocab.ID)
	if err != nil || got == nil {
		t.Fatalf("GetVocabByID() = %v, %v", got, err)
	}
	if got.WordCount != 3 {
		t.Errorf("WordCount = %d, want 3", got.WordCount)
	}

	list, err := words.GetVocabWords(vocab.ID)
	if err != nil {
		t.Fatalf("GetVocabWords() error = %v", err)
	}
	if len(list) != 3 || list[0].English != "cat" || list[2].Position != 3 {
		t.Fatalf("GetVocabWords() = %+v", list)
	}
	if list[2].Difficulty != models.DifficultyMedium {
		t.Errorf("invalid difficulty stored as %q, want MEDIUM", list[2].Difficulty)
	}

	page, total, err := words.GetWordsPage(vocab.ID, 2, 2)
	if err != nil {
		t.Fatalf("GetWordsPage() error = %v", err)
	}
	if total != 3 || len(page) != 1 || page[0].English != "horse" {
		t.Errorf("GetWordsPage(2, 2) = %+v, total %d", page, total)
	}

	id, _ := list[0].ID.Int64()
	if err := words.UpdateWord(id, models.Word{English: "kitty", Korean: "고양이"}); err != nil {
		t.Fatalf("UpdateWord() error = %v", err)
	}
	updated, _ := words.GetWordByID(id)
	if updated == nil || updated.English != "kitty" {
		t.Errorf("GetWordByID() after update = %+v", updated)
	}

	missing, err := vocabs.GetVocabByID(999)
	if err != nil || missing != nil {
		t.Errorf("GetVocabByID(missing) = %v, %v; want nil, nil", missing, err)
	}

	if err := vocabs.DeleteVocab(vocab.ID); err != nil {
		t.Fatalf("DeleteVocab() error = %v", err)
	}
	if n, _ := words.CountWords(vocab.ID); n != 0 {
		t.Errorf("CountWords() after delete = %d, want 0", n)
	}
}

func TestClassroomExamOrder(t *testing.T) {
	db := newTestDB(t)
	vocabs := NewVocabRepository(db)
	words := NewWordRepository(db)
	classrooms := NewClassroomRepository(db)

	first, _ := vocabs.CreateVocab("First", "")
	second, _ := vocabs.CreateVocab("Second", "")
	words.AddWord(first.ID, models.Word{English: "one", Korean: "하나"})
	words.AddWord(second.ID, models.Word{English: "two", Korean: "둘"})
	words.AddWord(second.ID, models.Word{English: "three", Korean: "셋"})

	room, err := classrooms.CreateClassroom("Class A", "", "brave-otter-1234", "teacher@example.com")
	if err != nil {
		t.Fatalf("CreateClassroom() error = %v", err)
	}

	err = db.WithTx(func(tx *database.Tx) error {
		return NewClassroomRepository(tx).SetClassroomVocabs(room.ID, []int64{second.ID, first.ID})
	})
	if err != nil {
		t.Fatalf("SetClassroomVocabs() error = %v", err)
	}

	got, err := classrooms.GetClassroomByCode("brave-otter-1234")
	if err != nil || got == nil {
		t.Fatalf("GetClassroomByCode() = %v, %v", got, err)
	}
	if len(got.VocabIDs) != 2 || got.VocabIDs[0] != second.ID {
		t.Errorf("VocabIDs = %v, want [%d %d]", got.VocabIDs, second.ID, first.ID)
	}

	list, err := classrooms.GetClassroomWords(room.ID)
	if err != nil {
		t.Fatalf("GetClassroomWords() error = %v", err)
	}
	var english []string
	for _, w := range list {
		english = append(english, w.English)
	}
	want := []string{"two", "three", "one"}
	if len(english) != len(want) {
		t.Fatalf("GetClassroomWords() = %v, want %v", english, want)
	}
	for i := range want {
		if english[i] != want[i] {
			t.Errorf("word %d = %s, want %s", i, english[i], want[i])
		}
	}

	all, err := classrooms.GetAllClassrooms()
	if err != nil || len(all) != 1 || len(all[0].VocabIDs) != 2 {
		t.Errorf("GetAllClassrooms() = %+v, %v", all, err)
	}
}

func TestUsers(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)

	created, err := users.CreateUser("admin@example.com", "hash", "Admin", true)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	got, err := users.GetUserByEmail("admin@example.com")
	if err != nil || got == nil {
		t.Fatalf("GetUserByEmail() = %v, %v", got, err)
	}
	if got.ID != created.ID || !got.IsAdmin {
		t.Errorf("GetUserByEmail() = %+v", got)
	}

	if err := users.UpdatePassword(created.ID, "new-hash"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}
	got, _ = users.GetUserByID(created.ID)
	if got.PasswordHash != "new-hash" {
		t.Errorf("PasswordHash = %q, want new-hash", got.PasswordHash)
	}

	if n, _ := users.CountUsers(); n != 1 {
		t.Errorf("CountUsers() = %d, want 1", n)
	}

	none, err := users.GetUserByEmail("nobody@example.com")
	if err != nil || none != nil {
		t.Errorf("GetUserByEmail(missing) = %v, %v", none, err)
	}
}

func TestStudyResultsAndBookmarks(t *testing.T) {
	db := newTestDB(t)
	study := NewStudyRepository(db)

	started := time.Now().Add(-time.Minute)
	completed := time.Now()
	result := &models.StudyResult{
		LearnerID:    "learner-1",
		SessionID:    "session-1",
		SourceKind:   models.SourceVocab,
		SourceID:     1,
		Style:        "typed",
		Direction:    "koreanToEnglish",
		TotalWords:   3,
		CorrectWords: 2,
		IncorrectIDs: []models.WordID{"2"},
		StartedAt:    started,
		CompletedAt:  &completed,
	}
	if err := study.SaveResult(result); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}
	if result.ID == 0 {
		t.Error("SaveResult() did not set ID")
	}

	results, err := study.GetLearnerResults("learner-1", 10)
	if err != nil {
		t.Fatalf("GetLearnerResults() error = %v", err)
	}
	if len(results) != 1 || results[0].CorrectWords != 2 || len(results[0].IncorrectIDs) != 1 || results[0].CompletedAt == nil {
		t.Errorf("GetLearnerResults() = %+v", results)
	}

	err = db.WithTx(func(tx *database.Tx) error {
		return NewStudyRepository(tx).ReplaceBookmarks("learner-1", []models.WordID{"5", "7", "5"})
	})
	if err != nil {
		t.Fatalf("ReplaceBookmarks() error = %v", err)
	}
	ids, err := study.GetBookmarks("learner-1")
	if err != nil || len(ids) != 2 {
		t.Errorf("GetBookmarks() = %v, %v; want 2 ids", ids, err)
	}

	if err := study.SaveSnapshot("learner-1", `{"a":1}`); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if err := study.SaveSnapshot("learner-1", `{"a":2}`); err != nil {
		t.Fatalf("SaveSnapshot() overwrite error = %v", err)
	}
	payload, _ := study.GetSnapshot("learner-1")
	if payload != `{"a":2}` {
		t.Errorf("GetSnapshot() = %q", payload)
	}
	study.DeleteSnapshot("learner-1")
	if payload, _ := study.GetSnapshot("learner-1"); payload != "" {
		t.Errorf("GetSnapshot() after delete = %q", payload)
	}
}
