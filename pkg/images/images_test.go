package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		name   string
		stored string
		want   []string
	}{
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
		{"csv", "uploads/a.jpg,uploads/b.png", []string{"uploads/a.jpg", "uploads/b.png"}},
		{"csv with padding", " uploads/a.jpg , uploads/b.png ", []string{"uploads/a.jpg", "uploads/b.png"}},
		{"csv with empty segments", "uploads/a.jpg,,uploads/b.png,", []string{"uploads/a.jpg", "uploads/b.png"}},
		{"json array", `["uploads/a.jpg","uploads/b.png"]`, []string{"uploads/a.jpg", "uploads/b.png"}},
		{"malformed json kept raw", `["uploads/a.jpg"`, []string{`["uploads/a.jpg"`}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decode(tc.stored))
		})
	}
}

func TestDecodeCSVAndJSONAgree(t *testing.T) {
	csv := Decode("uploads/a.jpg,uploads/b.png")
	jsonForm := Decode(`["uploads/a.jpg", "uploads/b.png"]`)
	assert.Equal(t, csv, jsonForm)
}

func TestEncodeRoundTrip(t *testing.T) {
	stored := Encode([]string{" uploads/a.jpg", "", "uploads/b.png "})
	assert.Equal(t, "uploads/a.jpg,uploads/b.png", stored)
	assert.Equal(t, []string{"uploads/a.jpg", "uploads/b.png"}, Decode(stored))
}

func TestAbsoluteURL(t *testing.T) {
	r := NewResolver("https://cdn.example.com/listings/")

	assert.Equal(t, "https://cdn.example.com/listings/uploads/a.jpg", r.AbsoluteURL("uploads/a.jpg"))
	assert.Equal(t, "https://cdn.example.com/listings/uploads/a.jpg", r.AbsoluteURL("/uploads/a.jpg"))
	assert.Equal(t, "https://cdn.example.com/listings/uploads/a.jpg", r.AbsoluteURL(`uploads\a.jpg`))
	assert.Equal(t, "", r.AbsoluteURL(""))
}

func TestAbsoluteURLIdempotent(t *testing.T) {
	r := NewResolver("https://cdn.example.com")

	once := r.AbsoluteURL("uploads/a.jpg")
	assert.Equal(t, once, r.AbsoluteURL(once))

	assert.Equal(t, "http://other.example.com/x.png", r.AbsoluteURL("http://other.example.com/x.png"))
}

func TestResolveAll(t *testing.T) {
	r := NewResolver("https://cdn.example.com")

	got := r.ResolveAll(`["uploads/a.jpg","https://cdn.example.com/uploads/b.png"]`)
	assert.Equal(t, []string{
		"https://cdn.example.com/uploads/a.jpg",
		"https://cdn.example.com/uploads/b.png",
	}, got)

	assert.Nil(t, r.ResolveAll(""))
}
