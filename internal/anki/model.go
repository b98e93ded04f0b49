package anki

import (
	"fmt"
	"strconv"
	"time"

	"github.com/lepinkainen/eikon/internal/deck"
)

// Fixed identifiers for the generated note model and deck. Output
// packages are standalone artifacts, so uniqueness across runs is not
// required.
const (
	ModelID int64 = 1607392319
	DeckID  int64 = 2059400110

	modelName    = "Image Model"
	templateName = "Card 1"
)

const (
	latexPre = "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n" +
		"\\usepackage[utf8]{inputenc}\n\\usepackage{amssymb,amsmath}\n" +
		"\\pagestyle{empty}\n\\setlength{\\parindent}{0in}\n\\begin{document}\n"
	latexPost = "\\end{document}"
)

// questionFormat renders the front of a card.
func questionFormat(fields deck.FieldNames) string {
	return fmt.Sprintf(`<div class="question">{{%s}}</div>`, fields.Question)
}

// answerFormat renders the back: question, answer and the image when one
// is attached.
func answerFormat(fields deck.FieldNames) string {
	return fmt.Sprintf(`<div class="question">{{%s}}</div>
<hr id="answer">
<div class="answer">{{%s}}</div>
{{#%s}}
<div class="image"><img src="{{%s}}"></div>
{{/%s}}`, fields.Question, fields.Answer, fields.Image, fields.Image, fields.Image)
}

// modelsJSON builds the models document for the col row: one note model
// with the three configured fields and a single card template.
func modelsJSON(fields deck.FieldNames, now time.Time) map[string]any {
	fieldDefs := make([]any, 0, 3)
	for i, name := range []string{fields.Question, fields.Answer, fields.Image} {
		fieldDefs = append(fieldDefs, map[string]any{
			"name":   name,
			"ord":    i,
			"sticky": false,
			"rtl":    false,
			"font":   "Arial",
			"size":   20,
			"media":  []any{},
		})
	}

	model := map[string]any{
		"id":        ModelID,
		"name":      modelName,
		"type":      0,
		"mod":       now.Unix(),
		"usn":       -1,
		"sortf":     0,
		"did":       DeckID,
		"tags":      []any{},
		"vers":      []any{},
		"css":       "",
		"latexPre":  latexPre,
		"latexPost": latexPost,
		"flds":      fieldDefs,
		"tmpls": []any{
			map[string]any{
				"name":  templateName,
				"ord":   0,
				"qfmt":  questionFormat(fields),
				"afmt":  answerFormat(fields),
				"bqfmt": "",
				"bafmt": "",
				"did":   nil,
			},
		},
		"req": []any{
			[]any{0, "any", []any{0}},
		},
	}

	return map[string]any{
		strconv.FormatInt(ModelID, 10): model,
	}
}

// decksJSON builds the decks document: the mandatory default deck plus
// the output deck.
func decksJSON(deckName string, now time.Time) map[string]any {
	return map[string]any{
		"1":                            deckJSON(1, "Default", now),
		strconv.FormatInt(DeckID, 10): deckJSON(DeckID, deckName, now),
	}
}

func deckJSON(id int64, name string, now time.Time) map[string]any {
	return map[string]any{
		"id":        id,
		"name":      name,
		"desc":      "",
		"mod":       now.Unix(),
		"usn":       -1,
		"collapsed": false,
		"dyn":       0,
		"conf":      1,
		"extendNew": 10,
		"extendRev": 50,
		"newToday":  []any{0, 0},
		"revToday":  []any{0, 0},
		"lrnToday":  []any{0, 0},
		"timeToday": []any{0, 0},
	}
}

// confJSON builds the collection configuration document.
func confJSON() map[string]any {
	return map[string]any{
		"activeDecks":   []any{1},
		"addToCur":      true,
		"collapseTime":  1200,
		"curDeck":       1,
		"curModel":      strconv.FormatInt(ModelID, 10),
		"dueCounts":     true,
		"estTimes":      true,
		"newBury":       true,
		"newSpread":     0,
		"nextPos":       1,
		"sortBackwards": false,
		"sortType":      "noteFld",
		"timeLim":       0,
	}
}

// dconfJSON builds the default deck options document.
func dconfJSON() map[string]any {
	return map[string]any{
		"1": map[string]any{
			"id":       1,
			"name":     "Default",
			"mod":      0,
			"usn":      0,
			"autoplay": true,
			"replayq":  true,
			"timer":    0,
			"maxTaken": 60,
			"new": map[string]any{
				"bury":          true,
				"delays":        []any{1, 10},
				"initialFactor": 2500,
				"ints":          []any{1, 4, 7},
				"order":         1,
				"perDay":        20,
				"separate":      true,
			},
			"rev": map[string]any{
				"bury":     true,
				"ease4":    1.3,
				"fuzz":     0.05,
				"ivlFct":   1,
				"maxIvl":   36500,
				"minSpace": 1,
				"perDay":   100,
			},
			"lapse": map[string]any{
				"delays":      []any{10},
				"leechAction": 0,
				"leechFails":  8,
				"minInt":      1,
				"mult":        0,
			},
		},
	}
}
