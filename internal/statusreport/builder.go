package statusreport

import (
	"fmt"
	"strings"
	"time"

	"deck_srv/internal/pptx"

	"github.com/sirupsen/logrus"
)

// Slide canvas, 16:9.
const (
	slideWidth  = 13.33
	slideHeight = 7.5
)

// Builder turns a ReportRequest into a four-slide deck file. It holds only
// immutable settings and may be shared between goroutines.
type Builder struct {
	brand  Brand
	logger *logrus.Logger
	now    func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock overrides the time source used for the title date and the
// default file name.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// NewBuilder creates a builder for the given brand.
func NewBuilder(brand Brand, logger *logrus.Logger, opts ...Option) *Builder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	b := &Builder{
		brand:  brand,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Brand returns the brand the builder stamps on decks.
func (b *Builder) Brand() Brand {
	return b.brand
}

// Build composes the deck and writes it to req.OutputPath, or to
// DefaultOutputPath when none is given. Any error or panic is reported
// as a failed Result.
func (b *Builder) Build(req ReportRequest) (res Result) {
	logger := b.logger.WithFields(logrus.Fields{
		"project": req.ProjectName,
		"period":  req.PeriodLabel,
	})

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("Deck build panicked")
			res = Failed(fmt.Errorf("build failed: %v", r))
		}
	}()

	path := req.OutputPath
	if path == "" {
		path = b.DefaultOutputPath(req.ProjectName)
	}

	prs := b.Compose(req)
	if err := prs.SaveFile(path); err != nil {
		logger.WithError(err).WithField("path", path).Error("Failed to save deck")
		return Failed(err)
	}

	logger.WithFields(logrus.Fields{
		"path":   path,
		"slides": prs.SlideCount(),
	}).Info("Deck created")
	return b.brand.Succeeded(path, prs.SlideCount())
}

// Compose renders the four slides in memory without touching the disk.
func (b *Builder) Compose(req ReportRequest) *pptx.Presentation {
	req = req.Capped()
	now := b.now()

	prs := pptx.New(pptx.Inches(slideWidth), pptx.Inches(slideHeight))
	prs.Properties = pptx.Properties{
		Title:   fmt.Sprintf("%s - %s", b.brand.Headline, req.ProjectName),
		Creator: b.brand.Name,
		Created: now,
	}

	c := composer{brand: b.brand, pal: b.brand.Palette}
	c.titleSlide(prs.AddSlide(), req.ProjectName, req.PeriodLabel, now)
	c.summarySlide(prs.AddSlide(), req.Accomplishments, req.Priorities, req.Risks)
	c.milestonesSlide(prs.AddSlide(), req.Milestones, req.UpcomingMilestones)
	c.closingSlide(prs.AddSlide(), req.ContactInfo)
	return prs
}

// DefaultOutputPath names the deck after the project and the current time,
// e.g. Tavant_WSR_Apollo_Rocket_20251213_154500.pptx.
func (b *Builder) DefaultOutputPath(projectName string) string {
	return fmt.Sprintf("%s_%s_%s.pptx",
		b.brand.FilePrefix,
		strings.ReplaceAll(projectName, " ", "_"),
		b.now().Format("20060102_150405"))
}
