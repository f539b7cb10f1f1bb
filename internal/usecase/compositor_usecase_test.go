package usecase

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"easysign/internal/domain/entity"
	"easysign/internal/infrastructure/pdf/pdftest"
)

func annotateRequest(documentID string, page int, x, y float64) *AnnotateRequest {
	return &AnnotateRequest{
		DocumentID:     documentID,
		Page:           intPtr(page),
		X:              floatPtr(x),
		Y:              floatPtr(y),
		SignatureImage: signaturePNG,
		Signer:         owner,
	}
}

func TestAnnotateStoresNewSignedVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.uploadDocument(t, 3)

	url, err := f.compositor.Annotate(ctx, annotateRequest(doc.ID, 1, 100, 297))
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}

	wantPrefix := "memory://EasySign/SignedDocs/" + doc.ID + "/signed_"
	if !strings.HasPrefix(url, wantPrefix) || !strings.HasSuffix(url, ".pdf") {
		t.Errorf("signed url = %q, want prefix %q", url, wantPrefix)
	}

	stored, _ := f.docs.FindByID(ctx, doc.ID)
	if stored.SignedFileURL != url {
		t.Errorf("signedFileUrl = %q, want %q", stored.SignedFileURL, url)
	}
	if stored.FileURL != doc.FileURL {
		t.Error("original file url must not change")
	}

	data, err := f.store.Fetch(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	signed, err := f.codec.Load(data)
	if err != nil {
		t.Fatalf("signed output does not load: %v", err)
	}
	if got := f.codec.PageCount(signed); got != 3 {
		t.Errorf("page count = %d, want 3", got)
	}

	kinds := f.eventKinds(t, doc.ID)
	if kinds[len(kinds)-1] != entity.EventAnnotated {
		t.Errorf("last event = %v, want annotated", kinds)
	}
}

func TestAnnotateBuildsOnLatestSignedVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.uploadDocument(t, 2)

	first, err := f.compositor.Annotate(ctx, annotateRequest(doc.ID, 1, 50, 50))
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.compositor.Annotate(ctx, annotateRequest(doc.ID, 2, 0, 0))
	if err != nil {
		t.Fatal(err)
	}

	if first == second {
		t.Fatal("each annotation must be stored under a new key")
	}
	fetched := f.store.fetched
	if len(fetched) != 2 || fetched[0] != doc.FileURL || fetched[1] != first {
		t.Errorf("unexpected fetch sequence %v", fetched)
	}

	// the first version stays readable
	if _, err := f.store.Fetch(ctx, first); err != nil {
		t.Errorf("previous version lost: %v", err)
	}
}

func TestAnnotateTwiceOnSamePageKeepsBoth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.uploadDocument(t, 1)

	if _, err := f.compositor.Annotate(ctx, annotateRequest(doc.ID, 1, 72, 500)); err != nil {
		t.Fatal(err)
	}
	url, err := f.compositor.Annotate(ctx, annotateRequest(doc.ID, 1, 300, 120))
	if err != nil {
		t.Fatal(err)
	}

	data, err := f.store.Fetch(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	content, err := pdftest.PageContent(data, 1)
	if err != nil {
		t.Fatalf("reading signed page: %v", err)
	}
	if !strings.Contains(content, "72 700 100 50 re f") {
		t.Errorf("original page content lost:\n%s", content)
	}

	want := []pdftest.Point{{X: 72, Y: 500}, {X: 300, Y: 120}}
	got := pdftest.StampOffsets(content)
	if len(got) != len(want) {
		t.Fatalf("placements = %v, want %v", got, want)
	}
	for i := range want {
		if math.Abs(got[i].X-want[i].X) > 0.01 || math.Abs(got[i].Y-want[i].Y) > 0.01 {
			t.Errorf("placement %d at %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAnnotatePageOutOfRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.uploadDocument(t, 3)
	objects := f.store.Store.(interface{ Len() int }).Len()

	_, err := f.compositor.Annotate(ctx, annotateRequest(doc.ID, 5, 10, 10))
	assertKind(t, err, entity.KindValidation)
	if !strings.Contains(err.Error(), "page 5 out of range, document has pages 1..3") {
		t.Errorf("unexpected message: %v", err)
	}

	stored, _ := f.docs.FindByID(ctx, doc.ID)
	if stored.SignedFileURL != "" {
		t.Errorf("signedFileUrl changed to %q", stored.SignedFileURL)
	}
	if got := f.store.Store.(interface{ Len() int }).Len(); got != objects {
		t.Errorf("no blob should be written, store grew from %d to %d", objects, got)
	}
}

func TestAnnotateStoreFailureKeepsDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.uploadDocument(t, 1)
	f.store.failUploads(errors.New("bucket unavailable"))

	_, err := f.compositor.Annotate(ctx, annotateRequest(doc.ID, 1, 10, 10))
	assertKind(t, err, entity.KindUpstreamFailure)

	stored, _ := f.docs.FindByID(ctx, doc.ID)
	if stored.SignedFileURL != "" {
		t.Errorf("signedFileUrl changed to %q", stored.SignedFileURL)
	}
	if stored.Version != doc.Version {
		t.Errorf("document saved despite failure: version %d -> %d", doc.Version, stored.Version)
	}
}

func TestAnnotateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.uploadDocument(t, 1)

	tests := []struct {
		name   string
		mutate func(r *AnnotateRequest)
		want   entity.ErrorKind
	}{
		{"missing document", func(r *AnnotateRequest) { r.DocumentID = "" }, entity.KindValidation},
		{"missing page", func(r *AnnotateRequest) { r.Page = nil }, entity.KindValidation},
		{"zero page", func(r *AnnotateRequest) { r.Page = intPtr(0) }, entity.KindValidation},
		{"missing x", func(r *AnnotateRequest) { r.X = nil }, entity.KindValidation},
		{"missing y", func(r *AnnotateRequest) { r.Y = nil }, entity.KindValidation},
		{"missing image", func(r *AnnotateRequest) { r.SignatureImage = "" }, entity.KindValidation},
		{"non image mime", func(r *AnnotateRequest) { r.SignatureImage = "data:application/pdf;base64,JVBERi0=" }, entity.KindUnsupportedImageFormat},
		{"png header jpeg bytes", func(r *AnnotateRequest) { r.SignatureImage = "data:image/png;base64,/9j/4AAQSkZJRg==" }, entity.KindUnsupportedImageFormat},
		{"unknown document", func(r *AnnotateRequest) { r.DocumentID = "missing" }, entity.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := annotateRequest(doc.ID, 1, 0, 0)
			tt.mutate(req)
			_, err := f.compositor.Annotate(ctx, req)
			assertKind(t, err, tt.want)
		})
	}
}

func TestAnnotateZeroCoordinatesAccepted(t *testing.T) {
	f := newFixture(t)
	doc := f.uploadDocument(t, 1)

	if _, err := f.compositor.Annotate(context.Background(), annotateRequest(doc.ID, 1, 0, 0)); err != nil {
		t.Fatalf("x=0, y=0 should be accepted: %v", err)
	}
}

func TestAnnotateMissingFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := entity.NewDocument("doc-gone", "Gone", "memory://EasySign/Files/gone.pdf", "gone.pdf", false, owner, signaturePNG, f.documents.(*documentUsecase).now())
	if err := f.docs.Create(ctx, doc); err != nil {
		t.Fatal(err)
	}

	_, err := f.compositor.Annotate(ctx, annotateRequest(doc.ID, 1, 10, 10))
	assertKind(t, err, entity.KindNotFound)
}

func TestAnnotateCorruptStoredFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	url, err := f.store.Upload(ctx, "EasySign/Files", "broken.pdf", []byte("not a pdf"), "application/pdf")
	if err != nil {
		t.Fatal(err)
	}
	doc := entity.NewDocument("doc-broken", "Broken", url, "broken.pdf", false, owner, signaturePNG, f.documents.(*documentUsecase).now())
	if err := f.docs.Create(ctx, doc); err != nil {
		t.Fatal(err)
	}

	_, err = f.compositor.Annotate(ctx, annotateRequest(doc.ID, 1, 10, 10))
	assertKind(t, err, entity.KindCorruptFormat)
}
