package httpadapter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
)

const multipartMemory = 8 << 20

func (rt *Router) reportsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadReports(w, r)
	case http.MethodGet:
		rt.listReports(w, r)
	case http.MethodDelete:
		rt.clearReports(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (rt *Router) uploadReports(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.uploadLimit())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}

	docs := make([]domain.RawDocument, 0, len(headers))
	for _, fh := range headers {
		doc, err := readPart(fh)
		if err != nil {
			writeError(w, err)
			return
		}
		docs = append(docs, doc)
	}

	result, err := rt.reports.Ingest(r.Context(), docs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func readPart(fh *multipart.FileHeader) (domain.RawDocument, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return domain.RawDocument{
		Filename: fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Body:     body,
	}, nil
}

func (rt *Router) listReports(w http.ResponseWriter, r *http.Request) {
	reports, err := rt.reports.Reports(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reports": reports,
		"total":   len(reports),
	})
}

func (rt *Router) clearReports(w http.ResponseWriter, r *http.Request) {
	if err := rt.reports.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) exportReports(format, filename string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		contentType, err := rt.exports.ContentType(format)
		if err != nil {
			writeError(w, err)
			return
		}

		var buf bytes.Buffer
		if err := rt.exports.Export(r.Context(), format, &buf); err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

type reportPoint struct {
	ReportNumber string  `json:"report_number"`
	Category     string  `json:"category"`
	Location     string  `json:"location"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// reportPoints lists reports that can be placed on a map.
func (rt *Router) reportPoints(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	reports, err := rt.reports.Reports(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	points := make([]reportPoint, 0, len(reports))
	for _, report := range reports {
		if !report.Plottable() {
			continue
		}
		points = append(points, reportPoint{
			ReportNumber: report.ReportNumber,
			Category:     report.PredictedCategory,
			Location:     report.Location,
			Latitude:     *report.Latitude,
			Longitude:    *report.Longitude,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": points, "total": len(points)})
}

// extractText runs the pipeline on a raw text body without storing the result.
func (rt *Router) extractText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, rt.uploadLimit()))
	if err != nil {
		writeError(w, err)
		return
	}
	text := strings.ReplaceAll(string(body), "\r\n", "\n")
	writeJSON(w, http.StatusOK, rt.processor.ProcessText(r.Context(), text))
}

func (rt *Router) uploadLimit() int64 {
	if rt.cfg.UploadMaxBytes <= 0 {
		return 32 << 20
	}
	return int64(rt.cfg.UploadMaxBytes)
}
