package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	dberror "relalg/pkg/error"
	"relalg/pkg/iterator"
	"relalg/pkg/schema"
	"relalg/pkg/tuple"
	"relalg/pkg/types"
)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New(
		[]schema.Attribute{schema.NewAttribute("id", types.IntType)},
		[]schema.ValAttribute{
			schema.NewValAttribute("amount", types.LongType, types.NewLongField(0)),
			schema.NewValAttribute("name", types.StringType, nil),
		})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func readAll(t *testing.T, src *CSVSource) ([]*tuple.Tuple, error) {
	t.Helper()
	it, err := src.Iterator()
	if err != nil {
		return nil, err
	}
	return iterator.Collect(it)
}

func TestCSVSourceClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.csv")
	if err := os.WriteFile(path, []byte("id,amount\n1,2\n2,3\n3,4\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	it, err := NewCSVSource(path, testSchema(t)).Iterator()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := it.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if err := iterator.Close(it); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if ok, err := it.HasNext(); ok || err != nil {
		t.Errorf("HasNext after Close = %v, %v", ok, err)
	}
	// A second close is a no-op.
	if err := iterator.Close(it); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestCSVSource(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "t.csv", "id, amount, name\n1,5,ann\n2,,bob\n3,7,null\n")
	src := NewCSVSource(path, testSchema(t))

	got, err := readAll(t, src)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	want := []*tuple.Tuple{
		tuple.NewBuilder().Int("id", 1).Long("amount", 5).String("name", "ann").MustBuild(),
		tuple.NewBuilder().Int("id", 2).String("name", "bob").MustBuild(),
		tuple.NewBuilder().Int("id", 3).Long("amount", 7).Null("name", types.StringType).MustBuild(),
	}
	assertRows(t, got, want...)

	// Each iterator reopens the file.
	again, err := readAll(t, src)
	if err != nil {
		t.Fatal(err)
	}
	assertRows(t, again, want...)
}

func TestCSVSourceZstd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.csv.zst")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Write([]byte("id,amount\n1,5\n2,6\n")); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := readAll(t, NewCSVSource(path, testSchema(t)))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	assertRows(t, got, longRow(1, "amount", 5), longRow(2, "amount", 6))
}

func TestCSVSourceErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    string
	}{
		{"empty file", "", dberror.CodeInvalidPlan},
		{"unknown column", "id,color\n1,red\n", dberror.CodeUnknownAttribute},
		{"missing key column", "amount\n1\n", dberror.CodeUnknownAttribute},
		{"repeated column", "id,id\n1,1\n", dberror.CodeDuplicateAttribute},
		{"empty key", "id,amount\n,1\n", dberror.CodeInvalidPlan},
		{"bad number", "id,amount\n1,lots\n", dberror.CodeTypeMismatch},
		{"short row", "id,amount\n1\n", dberror.CodeInvalidPlan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "t.csv", tt.content)
			_, err := readAll(t, NewCSVSource(path, testSchema(t)))
			if !dberror.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}

	_, err := readAll(t, NewCSVSource(filepath.Join(t.TempDir(), "missing.csv"), testSchema(t)))
	if !dberror.HasCode(err, dberror.CodeSourceIO) {
		t.Errorf("missing file error = %v", err)
	}
	if cat, _ := dberror.CategoryOf(err); cat != dberror.ErrCategorySystem {
		t.Errorf("missing file category = %v, want system", cat)
	}
}
