package controller_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/brianhealey/booklist/internal/books"
	"github.com/brianhealey/booklist/internal/controller"
	"github.com/brianhealey/booklist/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeDecoder returns "data:fake;<input>" once released. It ignores ctx so
// tests can observe what happens when a stale decode still completes.
type fakeDecoder struct {
	release chan struct{}
	err     error
}

func newFakeDecoder() *fakeDecoder {
	return &fakeDecoder{release: make(chan struct{})}
}

func (f *fakeDecoder) Decode(_ context.Context, data []byte) (string, error) {
	<-f.release
	if f.err != nil {
		return "", f.err
	}
	return "data:fake;" + string(data), nil
}

// instantDecoder returns immediately.
type instantDecoder struct{}

func (instantDecoder) Decode(_ context.Context, data []byte) (string, error) {
	return "data:fake;" + string(data), nil
}

func newTestController(t *testing.T, dec controller.Decoder, seed ...models.Book) *controller.Controller {
	t.Helper()
	if dec == nil {
		dec = instantDecoder{}
	}
	ctrl := controller.New(books.NewStore(seed), &books.CounterGenerator{}, dec, nil)
	t.Cleanup(ctrl.Close)
	return ctrl
}

func strp(s string) *string { return &s }

func titles(list []models.Book) []string {
	out := make([]string, len(list))
	for i, b := range list {
		out[i] = b.Title
	}
	return out
}

func TestInitialViewIsEmptyAddMode(t *testing.T) {
	ctrl := newTestController(t, nil)
	v := ctrl.View()

	if len(v.Books) != 0 {
		t.Errorf("expected no books, got %d", len(v.Books))
	}
	if v.Draft != (models.Draft{}) {
		t.Errorf("expected empty draft, got %+v", v.Draft)
	}
	if v.PosterPending {
		t.Error("no poster should be pending")
	}
}

func TestSubmitAddsAndResetsDraft(t *testing.T) {
	ctrl := newTestController(t, nil)

	ctrl.UpdateDraft(models.DraftUpdate{Title: strp("Dune"), Author: strp("Herbert")})
	v := ctrl.Submit()

	if len(v.Books) != 1 {
		t.Fatalf("expected 1 book, got %d", len(v.Books))
	}
	b := v.Books[0]
	if b.ID == "" || b.Title != "Dune" || b.Author != "Herbert" {
		t.Errorf("unexpected book %+v", b)
	}
	if v.Draft != (models.Draft{}) {
		t.Errorf("draft not reset: %+v", v.Draft)
	}
}

func TestSubmitEmptyDraftIsAccepted(t *testing.T) {
	ctrl := newTestController(t, nil)
	v := ctrl.Submit()
	if len(v.Books) != 1 {
		t.Fatalf("empty submit should add a record, got %d", len(v.Books))
	}
}

func TestSubmitInEditModeDispatchesEdit(t *testing.T) {
	ctrl := newTestController(t, nil,
		models.Book{ID: "a", Title: "A"},
		models.Book{ID: "b", Title: "B"},
	)

	v := ctrl.BeginEdit("a")
	if !v.Draft.Editing() || v.Draft.EditingID != "a" || v.Draft.Title != "A" {
		t.Fatalf("BeginEdit draft = %+v", v.Draft)
	}

	ctrl.UpdateDraft(models.DraftUpdate{Title: strp("A2")})
	v = ctrl.Submit()

	if diff := cmp.Diff([]string{"A2", "B"}, titles(v.Books)); diff != "" {
		t.Errorf("books after edit (-want +got):\n%s", diff)
	}
	if v.Books[0].ID != "a" {
		t.Errorf("edited record id = %q, want a", v.Books[0].ID)
	}
	if v.Draft.Editing() || v.Draft != (models.Draft{}) {
		t.Errorf("draft after submit = %+v, want empty add mode", v.Draft)
	}
}

func TestBeginEditUnknownIDIsNoop(t *testing.T) {
	ctrl := newTestController(t, nil, models.Book{ID: "a", Title: "A"})
	ctrl.UpdateDraft(models.DraftUpdate{Title: strp("typing")})
	before := ctrl.View()

	after := ctrl.BeginEdit("missing")

	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("BeginEdit(missing) changed view (-before +after):\n%s", diff)
	}
}

func TestDeleteRecordUnderEditLeavesEditMode(t *testing.T) {
	ctrl := newTestController(t, nil,
		models.Book{ID: "a", Title: "A"},
		models.Book{ID: "b", Title: "B"},
	)

	ctrl.BeginEdit("a")
	v := ctrl.Delete("a")

	if diff := cmp.Diff([]string{"B"}, titles(v.Books)); diff != "" {
		t.Errorf("books (-want +got):\n%s", diff)
	}
	if v.Draft.Editing() {
		t.Error("deleting the record under edit should clear edit mode")
	}
	if v.Draft.Title != "" {
		t.Errorf("draft should be reset, got %+v", v.Draft)
	}
}

func TestDeleteOtherRecordKeepsEditMode(t *testing.T) {
	ctrl := newTestController(t, nil,
		models.Book{ID: "a", Title: "A"},
		models.Book{ID: "b", Title: "B"},
	)

	ctrl.BeginEdit("a")
	v := ctrl.Delete("b")

	if v.Draft.EditingID != "a" {
		t.Errorf("EditingID = %q, want a", v.Draft.EditingID)
	}
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	ctrl := newTestController(t, nil, models.Book{ID: "a", Title: "A"})
	before := ctrl.View()

	after := ctrl.Delete("zzz")

	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("Delete(unknown) changed view (-before +after):\n%s", diff)
	}
}

func TestCancelEdit(t *testing.T) {
	ctrl := newTestController(t, nil, models.Book{ID: "a", Title: "A"})
	ctrl.BeginEdit("a")

	v := ctrl.CancelEdit()

	if v.Draft.Editing() {
		t.Error("CancelEdit should leave edit mode")
	}
	if diff := cmp.Diff([]string{"A"}, titles(v.Books)); diff != "" {
		t.Errorf("CancelEdit touched the store (-want +got):\n%s", diff)
	}
}

func TestScenario(t *testing.T) {
	ctrl := newTestController(t, nil)

	ctrl.UpdateDraft(models.DraftUpdate{Title: strp("A")})
	ctrl.Submit()
	ctrl.UpdateDraft(models.DraftUpdate{Title: strp("B")})
	v := ctrl.Submit()
	if diff := cmp.Diff([]string{"A", "B"}, titles(v.Books)); diff != "" {
		t.Fatalf("after adds (-want +got):\n%s", diff)
	}
	idA, idB := v.Books[0].ID, v.Books[1].ID
	if idA == idB {
		t.Fatalf("ids collide: %q", idA)
	}

	ctrl.BeginEdit(idA)
	ctrl.UpdateDraft(models.DraftUpdate{Title: strp("A2")})
	v = ctrl.Submit()
	if diff := cmp.Diff([]string{"A2", "B"}, titles(v.Books)); diff != "" {
		t.Fatalf("after edit (-want +got):\n%s", diff)
	}

	v = ctrl.Delete(idB)
	if diff := cmp.Diff([]string{"A2"}, titles(v.Books)); diff != "" {
		t.Fatalf("after delete (-want +got):\n%s", diff)
	}
}

func TestRevisionAndEvents(t *testing.T) {
	ctrl := newTestController(t, nil)
	ch := ctrl.Events().Subscribe("test")

	v := ctrl.UpdateDraft(models.DraftUpdate{Author: strp("X")})
	if v.Revision != 1 {
		t.Errorf("Revision = %d, want 1", v.Revision)
	}

	select {
	case got := <-ch:
		if got.Draft.Author != "X" {
			t.Errorf("published draft author = %q, want X", got.Draft.Author)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published view")
	}

	// No-ops do not publish or bump the revision.
	if v := ctrl.UpdateDraft(models.DraftUpdate{}); v.Revision != 1 {
		t.Errorf("no-op Revision = %d, want 1", v.Revision)
	}
}

func TestAttachPosterMergesIntoDraft(t *testing.T) {
	ctrl := newTestController(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ctrl.UpdateDraft(models.DraftUpdate{Title: strp("With poster")})
	ctrl.AttachPoster("cover.png", []byte("img"))
	if err := ctrl.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	v := ctrl.View()
	if v.Draft.Poster != "data:fake;img" {
		t.Errorf("draft poster = %q", v.Draft.Poster)
	}
	if v.Draft.Title != "With poster" {
		t.Errorf("poster merge clobbered title: %q", v.Draft.Title)
	}
	if v.PosterPending {
		t.Error("PosterPending should be false after completion")
	}

	v = ctrl.Submit()
	if v.Books[0].Poster != "data:fake;img" {
		t.Errorf("submitted poster = %q", v.Books[0].Poster)
	}
}

func TestAttachPosterEmptyIsNoop(t *testing.T) {
	ctrl := newTestController(t, nil)
	v := ctrl.AttachPoster("", nil)
	if v.PosterPending || v.Revision != 0 {
		t.Errorf("empty attach changed view: %+v", v)
	}
}

func TestStalePosterDoesNotMergeAfterSubmit(t *testing.T) {
	dec := newFakeDecoder()
	ctrl := controller.New(books.NewStore(nil), &books.CounterGenerator{}, dec, nil)

	v := ctrl.AttachPoster("slow.png", []byte("old"))
	if !v.PosterPending {
		t.Fatal("expected PosterPending after attach")
	}

	ctrl.UpdateDraft(models.DraftUpdate{Title: strp("first")})
	ctrl.Submit()
	ctrl.UpdateDraft(models.DraftUpdate{Title: strp("second draft")})

	close(dec.release)
	ctrl.Close() // waits for the decode goroutine

	v = ctrl.View()
	if v.Draft.Poster != "" {
		t.Errorf("stale poster merged into unrelated draft: %q", v.Draft.Poster)
	}
	if v.Books[0].Poster != "" {
		t.Errorf("stale poster reached committed record: %q", v.Books[0].Poster)
	}
	if v.PosterPending {
		t.Error("PosterPending should be cleared by the reset")
	}
}

func TestNewerPosterWins(t *testing.T) {
	first := newFakeDecoder()
	ctrl := controller.New(books.NewStore(nil), &books.CounterGenerator{}, first, nil)

	ctrl.AttachPoster("a.png", []byte("a"))
	ctrl.AttachPoster("b.png", []byte("b"))

	close(first.release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ctrl.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	ctrl.Close()

	if got := ctrl.View().Draft.Poster; got != "data:fake;b" {
		t.Errorf("poster = %q, want the later attach", got)
	}
}

func TestPosterDecodeFailureLeavesDraft(t *testing.T) {
	dec := newFakeDecoder()
	dec.err = errors.New("bad image")
	close(dec.release)
	ctrl := newTestController(t, dec)

	ctrl.UpdateDraft(models.DraftUpdate{Title: strp("T")})
	ctrl.AttachPoster("broken.png", []byte("junk"))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ctrl.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	v := ctrl.View()
	if v.Draft.Poster != "" || v.PosterPending {
		t.Errorf("failed decode changed poster state: %+v", v)
	}
	if v.Draft.Title != "T" {
		t.Errorf("title = %q, want T", v.Draft.Title)
	}
}

func TestClearPoster(t *testing.T) {
	ctrl := newTestController(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ctrl.AttachPoster("p.png", []byte("p"))
	if err := ctrl.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	v := ctrl.ClearPoster()
	if v.Draft.Poster != "" {
		t.Errorf("poster = %q after ClearPoster", v.Draft.Poster)
	}
	rev := v.Revision
	if v := ctrl.ClearPoster(); v.Revision != rev {
		t.Error("ClearPoster with nothing to clear should be a no-op")
	}
}

func TestConcurrentSubmits(t *testing.T) {
	ctrl := newTestController(t, nil)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctrl.Submit()
		}()
	}
	wg.Wait()

	v := ctrl.View()
	if len(v.Books) != n {
		t.Fatalf("expected %d books, got %d", n, len(v.Books))
	}
	seen := make(map[string]bool, n)
	for _, b := range v.Books {
		if seen[b.ID] {
			t.Errorf("duplicate id %q", b.ID)
		}
		seen[b.ID] = true
	}
}

func TestCloseWhileAttaching(t *testing.T) {
	for i := 0; i < 50; i++ {
		ctrl := controller.New(books.NewStore(nil), &books.CounterGenerator{}, instantDecoder{}, nil)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				ctrl.AttachPoster("p.png", []byte("p"))
			}
		}()
		ctrl.Close()
		wg.Wait()

		if v := ctrl.AttachPoster("late.png", []byte("late")); v.PosterPending {
			t.Fatal("AttachPoster after Close should not start a decode")
		}
	}
}
