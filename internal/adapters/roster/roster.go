// Package roster imports candidates from HTML roster tables, the format
// showcase and travel-ball sites publish.
//
// The first row holding <th> cells (or the first row when there are none)
// names the columns. Recognised headers are matched case-insensitively;
// unknown columns are ignored.
package roster

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/errs"
	"github.com/njrini99-code/Helm-Sports-Labs-sub006/internal/domain/model"
)

// column names the candidate field a header maps to.
type column int

const (
	colUnknown column = iota
	colID
	colName
	colPosition
	colSecondary
	colGradYear
	colState
	colBats
	colThrows
	colBatsThrows
	colHeight
	colWeight
	colPitchVelo
	colExitVelo
	colSprint
	colVideo
)

var headers = map[string]column{
	"id":         colID,
	"player id":  colID,
	"name":       colName,
	"player":     colName,
	"pos":        colPosition,
	"position":   colPosition,
	"primary":    colPosition,
	"secondary":  colSecondary,
	"2nd pos":    colSecondary,
	"grad":       colGradYear,
	"class":      colGradYear,
	"grad year":  colGradYear,
	"state":      colState,
	"st":         colState,
	"bats":       colBats,
	"throws":     colThrows,
	"b/t":        colBatsThrows,
	"ht":         colHeight,
	"height":     colHeight,
	"wt":         colWeight,
	"weight":     colWeight,
	"fb":         colPitchVelo,
	"fb velo":    colPitchVelo,
	"pitch velo": colPitchVelo,
	"ev":         colExitVelo,
	"exit velo":  colExitVelo,
	"60":         colSprint,
	"60 yd":      colSprint,
	"sprint":     colSprint,
	"video":      colVideo,
	"has video":  colVideo,
}

var (
	heightFeetInches = regexp.MustCompile(`^(\d+)\s*['-]\s*(\d{1,2})\s*"?$`)
	nonSlug          = regexp.MustCompile(`[^a-z0-9]+`)
)

// RowError reports a row that could not be converted.
type RowError struct {
	Row int    `json:"row"`
	Msg string `json:"message"`
}

func (e RowError) Error() string { return fmt.Sprintf("row %d: %s", e.Row, e.Msg) }

// Result holds the parsed candidates and the rows that were skipped.
type Result struct {
	Candidates []model.Candidate `json:"candidates"`
	Skipped    []RowError        `json:"skipped,omitempty"`
}

// Importer converts roster tables to candidates.
type Importer struct {
	selector    string
	defaultGrad int
	verified    bool
}

// New creates an importer.
func New(opts ...Option) *Importer {
	im := &Importer{selector: "table"}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Parse reads the first table matching the selector. A document without one
// is a validation error; bad rows are skipped and reported.
func (im *Importer) Parse(r io.Reader) (Result, error) {
	const op = "roster.Parse"
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Result{}, errs.WrapKind(op, errs.ErrValidation, err)
	}
	table := doc.Find(im.selector).First()
	if table.Length() == 0 {
		return Result{}, errs.Validationf(op, "no table matches %q", im.selector)
	}

	rows := table.Find("tr")
	headerIdx := 0
	rows.EachWithBreak(func(i int, tr *goquery.Selection) bool {
		if tr.Find("th").Length() > 0 {
			headerIdx = i
			return false
		}
		return true
	})

	var cols []column
	rows.Eq(headerIdx).Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		cols = append(cols, headers[normalizeHeader(cell.Text())])
	})
	if !hasColumn(cols, colName) && !hasColumn(cols, colID) {
		return Result{}, errs.Validationf(op, "roster needs a name or id column")
	}

	res := Result{Candidates: []model.Candidate{}}
	seen := make(map[string]int)
	rows.Each(func(i int, tr *goquery.Selection) {
		if i <= headerIdx {
			return
		}
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return
		}
		c, err := im.row(cols, cells)
		if err == nil {
			err = c.Validate()
		}
		if err != nil {
			res.Skipped = append(res.Skipped, RowError{Row: i, Msg: err.Error()})
			return
		}
		if prev, dup := seen[c.ID]; dup {
			res.Candidates[prev] = c
			return
		}
		seen[c.ID] = len(res.Candidates)
		res.Candidates = append(res.Candidates, c)
	})
	return res, nil
}

func (im *Importer) row(cols []column, cells *goquery.Selection) (model.Candidate, error) {
	c := model.Candidate{GradYear: im.defaultGrad, Verified: im.verified}
	for i, col := range cols {
		if i >= cells.Length() {
			break
		}
		v := strings.TrimSpace(cells.Eq(i).Text())
		if v == "" || v == "-" {
			continue
		}
		var err error
		switch col {
		case colID:
			c.ID = v
		case colName:
			c.Name = v
		case colPosition:
			primary, secondary, _ := strings.Cut(v, "/")
			c.PrimaryPosition = strings.ToUpper(strings.TrimSpace(primary))
			if s := strings.TrimSpace(secondary); s != "" && c.SecondaryPosition == "" {
				c.SecondaryPosition = strings.ToUpper(s)
			}
		case colSecondary:
			c.SecondaryPosition = strings.ToUpper(v)
		case colGradYear:
			c.GradYear, err = strconv.Atoi(strings.TrimPrefix(v, "'"))
			if err == nil && c.GradYear < 100 {
				c.GradYear += 2000
			}
		case colState:
			c.State = strings.ToUpper(v)
		case colBats:
			c.Bats = strings.ToUpper(v[:1])
		case colThrows:
			c.Throws = strings.ToUpper(v[:1])
		case colBatsThrows:
			b, t, ok := strings.Cut(v, "/")
			if ok && b != "" && t != "" {
				c.Bats, c.Throws = strings.ToUpper(b[:1]), strings.ToUpper(t[:1])
			}
		case colHeight:
			c.Height, err = parseHeight(v)
		case colWeight:
			c.Weight, err = parseMetric(strings.TrimSuffix(strings.ToLower(v), "lbs"))
		case colPitchVelo:
			c.PitchVelo, err = parseMetric(strings.TrimSuffix(strings.ToLower(v), "mph"))
		case colExitVelo:
			c.ExitVelo, err = parseMetric(strings.TrimSuffix(strings.ToLower(v), "mph"))
		case colSprint:
			c.SprintTime, err = parseMetric(strings.TrimSuffix(strings.ToLower(v), "s"))
		case colVideo:
			switch strings.ToLower(v) {
			case "y", "yes", "true", "1", "✓":
				c.HasVideo = true
			}
		}
		if err != nil {
			return model.Candidate{}, fmt.Errorf("column %d: %w", i+1, err)
		}
	}
	if c.ID == "" {
		c.ID = slug(c.Name, c.GradYear)
	}
	return c, nil
}

func parseMetric(v string) (*float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", v)
	}
	return &f, nil
}

// parseHeight accepts inches ("73") or feet-inches ("6-1", `6'1"`).
func parseHeight(v string) (*float64, error) {
	if m := heightFeetInches.FindStringSubmatch(v); m != nil {
		ft, _ := strconv.Atoi(m[1])
		in, _ := strconv.Atoi(m[2])
		h := float64(ft*12 + in)
		return &h, nil
	}
	return parseMetric(v)
}

func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}

func slug(name string, grad int) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return ""
	}
	return fmt.Sprintf("%s-%d", s, grad)
}

func hasColumn(cols []column, want column) bool {
	for _, c := range cols {
		if c == want {
			return true
		}
	}
	return false
}
