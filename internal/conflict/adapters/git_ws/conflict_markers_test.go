package gitws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitConflictSides(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantOurs   string
		wantTheirs string
		wantFound  bool
	}{
		{
			name:       "no markers",
			content:    "one\ntwo\n",
			wantOurs:   "one\ntwo\n",
			wantTheirs: "one\ntwo\n",
			wantFound:  false,
		},
		{
			name: "single block",
			content: "one\n" +
				"<<<<<<< HEAD\n" +
				"two from a\n" +
				"=======\n" +
				"two from b\n" +
				">>>>>>> refs/merge-sentry/pr-2\n" +
				"three\n",
			wantOurs:   "one\ntwo from a\nthree\n",
			wantTheirs: "one\ntwo from b\nthree\n",
			wantFound:  true,
		},
		{
			name: "diff3 style with base section",
			content: "<<<<<<< HEAD\n" +
				"ours\n" +
				"||||||| merged common ancestors\n" +
				"original\n" +
				"=======\n" +
				"theirs\n" +
				">>>>>>> other\n",
			wantOurs:   "ours\n",
			wantTheirs: "theirs\n",
			wantFound:  true,
		},
		{
			name: "separator outside a block is plain content",
			content: "=======\n" +
				"text\n",
			wantOurs:   "=======\ntext\n",
			wantTheirs: "=======\ntext\n",
			wantFound:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ours, theirs, found := splitConflictSides(tt.content)
			assert.Equal(t, tt.wantOurs, ours)
			assert.Equal(t, tt.wantTheirs, theirs)
			assert.Equal(t, tt.wantFound, found)
		})
	}
}
