package score

import (
	"reflect"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "plain sentences",
			text: "Transformers changed everything. Attention replaced recurrence entirely.",
			want: []string{
				"Transformers changed everything.",
				"Attention replaced recurrence entirely.",
			},
		},
		{
			name: "abbreviation does not split",
			text: "Several models, e.g. BERT and GPT, build on this. Later work refined it.",
			want: []string{
				"Several models, e.g. BERT and GPT, build on this.",
				"Later work refined it.",
			},
		},
		{
			name: "trailing et al",
			text: "The method follows Vaswani et al. with minor changes. Results improved substantially.",
			want: []string{
				"The method follows Vaswani et al. with minor changes.",
				"Results improved substantially.",
			},
		},
		{
			name: "short fragments dropped",
			text: "Ok. This sentence is long enough to keep around.",
			want: []string{"This sentence is long enough to keep around."},
		},
		{
			name: "question and exclamation",
			text: "Does scale matter? It absolutely does matter!",
			want: []string{"Does scale matter?", "It absolutely does matter!"},
		},
		{
			name: "empty input",
			text: "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text, nil)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestSplitSentences_AbbreviationInsideWord(t *testing.T) {
	// "al." must not protect the period of a word merely ending in "al".
	text := "The outcome was phenomenal. Nothing else came close to it."
	got := SplitSentences(text, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %#v", len(got), got)
	}
}

func TestSplitSentences_CustomAbbreviations(t *testing.T) {
	text := "See spec. rev. three for details. The appendix covers the rest."
	got := SplitSentences(text, []string{"spec.", "rev."})
	want := []string{
		"See spec. rev. three for details.",
		"The appendix covers the rest.",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitSentences() = %#v, want %#v", got, want)
	}
}
