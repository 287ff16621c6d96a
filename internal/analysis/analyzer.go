package analysis

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Archiver keeps a copy of every uploaded document.
type Archiver interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// MetricsRecorder records document analysis outcomes.
type MetricsRecorder interface {
	RecordDocumentAnalysis(ctx context.Context, source, severity string, duration time.Duration)
}

type Analyzer struct {
	extractor DocumentTextExtractor
	archiver  Archiver
	metrics   MetricsRecorder
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewAnalyzer(extractor DocumentTextExtractor, archiver Archiver, log logrus.FieldLogger) *Analyzer {
	if extractor == nil {
		extractor = NewPDFExtractor()
	}
	return &Analyzer{
		extractor: extractor,
		archiver:  archiver,
		log:       log,
		now:       time.Now,
	}
}

func (a *Analyzer) SetMetrics(m MetricsRecorder) { a.metrics = m }

func (a *Analyzer) SetClock(now func() time.Time) { a.now = now }

// Analyze reads an uploaded report. Readable text longer than MinTextLength
// drives the result; anything else, extraction failures included, falls
// back to hints in the file name.
func (a *Analyzer) Analyze(ctx context.Context, filename string, data []byte) Result {
	start := time.Now()
	a.archive(ctx, filename, data)

	text, err := a.extractor.ExtractText(ctx, filename, data)
	if err != nil {
		a.log.WithError(err).WithField("filename", filename).Warn("text extraction failed, using filename heuristics")
		text = ""
	}

	var res Result
	if len(strings.TrimSpace(text)) > MinTextLength {
		res = FromText(text, filename, a.now())
	} else {
		res = FromFilename(filename, a.now())
	}

	a.log.WithFields(logrus.Fields{
		"filename":  filename,
		"source":    res.Source,
		"severity":  res.Severity,
		"diagnosis": res.Diagnosis,
	}).Info("document analysed")

	if a.metrics != nil {
		a.metrics.RecordDocumentAnalysis(ctx, res.Source, string(res.Severity), time.Since(start))
	}
	return res
}

func (a *Analyzer) archive(ctx context.Context, filename string, data []byte) {
	if a.archiver == nil || len(data) == 0 {
		return
	}
	key := fmt.Sprintf("documents/%s/%s", uuid.NewString(), path.Base(filename))
	if err := a.archiver.Put(ctx, key, data, http.DetectContentType(data)); err != nil {
		a.log.WithError(err).WithField("key", key).Warn("failed to archive uploaded document")
	}
}
