package service

import (
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9_-]*$`)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello, World!", "hello-world"},
		{"Getting Started with React Hooks", "getting-started-with-react-hooks"},
		{"Building Modern Web Apps with Next.js", "building-modern-web-apps-with-nextjs"},
		{"  tabs\tand\n\nnewlines  ", "-tabs-and-newlines-"},
		{"snake_case stays", "snake_case-stays"},
		{"already-hyphenated title", "already-hyphenated-title"},
		{"Café über straße", "caf-ber-strae"},
		{"!!!", ""},
		{"你好", ""},
		{"a\u0085b", "ab"},
		{"a\ufeffb", "a-b"},
		{"a\u00a0\u2003b", "a-b"},
		{"line\u2028break", "line-break"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}

func TestSlugify_OnlySlugCharacters(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	alphabet := []rune("abcXYZ019 _-\t,.!?é漢 ")
	for i := 0; i < 500; i++ {
		n := r.Intn(30)
		title := make([]rune, n)
		for j := range title {
			title[j] = alphabet[r.Intn(len(alphabet))]
		}
		slug := Slugify(string(title))
		assert.Regexp(t, slugPattern, slug, "title %q", string(title))
	}
}

func TestExcerpt(t *testing.T) {
	words := make([]string, 40)
	for i := range words {
		words[i] = "w" + string(rune('a'+i%26))
	}
	long := strings.Join(words, "  \n")

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short content still gets ellipsis", "just three words", "just three words..."},
		{"exactly 25 words", strings.Join(words[:25], " "), strings.Join(words[:25], " ") + "..."},
		{"long content is cut at 25 words", long, strings.Join(words[:25], " ") + "..."},
		{"whitespace collapsed", "a\t\tb\n c", "a b c..."},
		{"empty", "", "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Excerpt(tt.content))
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", []string{}},
		{"Go, react, REACT", []string{"go", "react"}},
		{" ,, ,", []string{}},
		{"Web-Development,  AI ,ai,Ai", []string{"web-development", "ai"}},
		{"b,a,c", []string{"b", "a", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTags(tt.raw))
		})
	}
}

func TestJoinTags_RoundTripsThroughNormalize(t *testing.T) {
	suggested := []string{"Golang", "web", "golang"}
	assert.Equal(t, []string{"golang", "web"}, NormalizeTags(JoinTags(suggested)))
}
