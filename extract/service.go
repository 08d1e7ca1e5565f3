package extract

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oesukam/r-incident-query-webapp/core"
	"github.com/oesukam/r-incident-query-webapp/metrics"
)

// DocumentSource provides the incident detail and document download calls
// the extraction pipeline consumes.
type DocumentSource interface {
	IncidentDetails(ctx context.Context, incidentID string) (*core.IncidentDetails, error)
	DownloadDocument(ctx context.Context, documentID string) (string, error)
}

// Service runs the per-incident extraction pipeline: list evidence
// documents, download each, parse each, merge the results. A failed download
// degrades to zero records for that document; the rest of the incident still
// extracts.
type Service struct {
	source DocumentSource
	store  Store
}

func NewService(source DocumentSource, store Store) *Service {
	return &Service{source: source, store: store}
}

// Emails returns the deduplicated email records for one incident, sorted by
// address. Results are cached per incident; a cache hit skips all upstream
// calls.
func (s *Service) Emails(ctx context.Context, incidentID string) ([]core.EmailRecord, error) {
	if incidentID == "" {
		return nil, core.ErrIncidentIDRequired
	}

	if cached, err := s.store.Get(ctx, incidentID); err == nil {
		metrics.ExtractionCache.WithLabelValues("hit").Inc()
		logrus.WithField("incidentId", incidentID).Debug("Using cached extraction")
		return cached, nil
	} else if !errors.Is(err, core.ErrNotCached) {
		logrus.WithError(err).WithField("incidentId", incidentID).
			Warn("Extraction cache read failed, extracting fresh")
	}
	metrics.ExtractionCache.WithLabelValues("miss").Inc()

	records, err := s.extract(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Set(ctx, incidentID, records); err != nil {
		logrus.WithError(err).WithField("incidentId", incidentID).
			Warn("Extraction cache write failed")
	}

	return records, nil
}

func (s *Service) extract(ctx context.Context, incidentID string) ([]core.EmailRecord, error) {
	runID := uuid.NewString()
	log := logrus.WithFields(logrus.Fields{
		"incidentId":   incidentID,
		"extractionId": runID,
	})

	details, err := s.source.IncidentDetails(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	log.WithField("documents", len(details.DocumentFiles)).Info("Extracting emails from incident documents")

	combined := make(map[string]core.EmailRecord)
	for _, doc := range details.DocumentFiles {
		ref := doc.Ref()
		if ref == "" {
			continue
		}

		content, err := s.source.DownloadDocument(ctx, ref)
		if err != nil {
			// A dead document does not fail the incident.
			metrics.DocumentsParsed.WithLabelValues("download_failed").Inc()
			log.WithError(err).WithField("documentId", ref).Warn("Skipping document, download failed")
			continue
		}

		parsed := ParseDocument(content)
		metrics.DocumentsParsed.WithLabelValues("parsed").Inc()
		log.WithFields(logrus.Fields{
			"documentId": ref,
			"records":    len(parsed),
		}).Debug("Document parsed")

		MergeInto(combined, parsed)
	}

	records := make([]core.EmailRecord, 0, len(combined))
	for _, rec := range combined {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Email < records[j].Email })

	metrics.EmailsExtracted.Add(float64(len(records)))
	log.WithField("emails", len(records)).Info("Extraction complete")

	return records, nil
}

// Invalidate drops the cached extraction for one incident.
func (s *Service) Invalidate(ctx context.Context, incidentID string) error {
	return s.store.Delete(ctx, incidentID)
}
