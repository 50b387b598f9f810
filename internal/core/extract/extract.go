// Package extract turns a host page snapshot into an Observation.
//
// Extraction is best effort: a missing element leaves the matching field at
// its zero value and never produces an error. Callers treat absence as "no
// information this poll".
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"auctionpauser/internal/core/model"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const waitingToken = "Waiting..."

var (
	digitsPattern = regexp.MustCompile(`\d+`)
	clockPattern  = regexp.MustCompile(`(\d+)\s*:\s*(\d+)`)
	livePattern   = regexp.MustCompile(`\bLive\b`)
	pausedPattern = regexp.MustCompile(`\bPaused\b`)
)

// skippedElements never contribute rendered text.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// Extractor reads observations using a fixed set of selectors.
type Extractor struct {
	selectors model.Selectors
}

// New creates an Extractor. Empty selectors fall back to the defaults.
func New(selectors model.Selectors) *Extractor {
	config := model.PauserConfig{Selectors: selectors}.Normalize()
	return &Extractor{selectors: config.Selectors}
}

// Extract reads one Observation from the document.
func (extractor *Extractor) Extract(doc *goquery.Document) model.Observation {
	var obs model.Observation
	if doc == nil {
		obs.TimerText = model.TimerUnknown
		return obs
	}

	if value, ok := extractor.Timer(doc); ok {
		obs.Timer = &value
	}
	obs.Nominee = extractor.Nominee(doc)

	markers := extractor.scanMarkers(doc)
	obs.LiveMarker = markers.live
	obs.PausedMarker = markers.paused
	obs.TimerText = model.TimerTextFromMarkers(markers.live, markers.paused)
	obs.Waiting = markers.waiting || extractor.navbarWaiting(doc)
	return obs
}

// Ready reports whether the draft room has rendered enough to observe.
func (extractor *Extractor) Ready(doc *goquery.Document) bool {
	if doc == nil {
		return false
	}
	if !doc.Find("body").HasClass(extractor.selectors.ReadyBody) {
		return false
	}
	return doc.Find(extractor.selectors.ReadyProbe).Length() > 0
}

// Timer parses the countdown widget. Structural parsing of the widget's
// direct text children wins; the minutes:seconds pattern over the flattened
// text is only consulted when the structure reads 0:00.
func (extractor *Extractor) Timer(doc *goquery.Document) (model.TimerValue, bool) {
	widget := doc.Find(extractor.selectors.Timer).First()
	if widget.Length() == 0 {
		return model.TimerValue{}, false
	}

	minutes, seconds := structuralClock(widget.Nodes[0])
	if minutes != 0 || seconds != 0 {
		if value, ok := model.NewTimerValue(minutes, seconds); ok {
			return value, true
		}
	}

	match := clockPattern.FindStringSubmatch(strings.TrimSpace(widget.Text()))
	if match == nil {
		return model.TimerValue{}, false
	}
	minutes, _ = strconv.Atoi(match[1])
	seconds, _ = strconv.Atoi(match[2])
	return model.NewTimerValue(minutes, seconds)
}

func structuralClock(node *html.Node) (int, int) {
	var numbers []int
	for child := node.FirstChild; child != nil && len(numbers) < 2; child = child.NextSibling {
		if child.Type != html.TextNode {
			continue
		}
		for _, digits := range digitsPattern.FindAllString(child.Data, -1) {
			number, err := strconv.Atoi(digits)
			if err != nil || len(numbers) == 2 {
				continue
			}
			numbers = append(numbers, number)
		}
	}
	switch len(numbers) {
	case 0:
		return 0, 0
	case 1:
		return numbers[0], 0
	default:
		return numbers[0], numbers[1]
	}
}

// Nominee returns the nominated player's name, scoped to the auction bar.
func (extractor *Extractor) Nominee(doc *goquery.Document) string {
	bar := doc.Find(extractor.selectors.AuctionBar).First()
	if bar.Length() == 0 {
		return ""
	}

	candidates := append([]string{
		extractor.selectors.NomineeLink,
		extractor.selectors.NomineeName,
	}, extractor.selectors.NomineeExtras...)

	for _, selector := range candidates {
		if name := collapse(bar.Find(selector).First().Text()); name != "" {
			return name
		}
	}
	return ""
}

type markerSet struct {
	live    bool
	paused  bool
	waiting bool
}

func (extractor *Extractor) scanMarkers(doc *goquery.Document) markerSet {
	var markers markerSet
	doc.Find(extractor.selectors.MarkerScope).Each(func(_ int, scope *goquery.Selection) {
		for _, node := range scope.Nodes {
			walkText(node, func(text string) {
				if !markers.live && livePattern.MatchString(text) {
					markers.live = true
				}
				if !markers.paused && pausedPattern.MatchString(text) {
					markers.paused = true
				}
				if !markers.waiting && strings.Contains(text, waitingToken) {
					markers.waiting = true
				}
			})
		}
	})
	return markers
}

func (extractor *Extractor) navbarWaiting(doc *goquery.Document) bool {
	center := doc.Find(extractor.selectors.NavbarCenter).First()
	return center.Length() > 0 && strings.Contains(center.Text(), waitingToken)
}

func walkText(node *html.Node, visit func(string)) {
	if node.Type == html.ElementNode && skippedElements[node.Data] {
		return
	}
	if node.Type == html.TextNode {
		visit(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		walkText(child, visit)
	}
}

func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
