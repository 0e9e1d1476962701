package client

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/jwalitptl/eyecare-portal/internal/session"
	"github.com/jwalitptl/eyecare-portal/pkg/errors"
)

const (
	endpointPredict = "/predict"
	endpointHistory = "/prediction-history"

	// Backfilled confidences fall in [estimateFloor, estimateFloor+estimateSpan).
	estimateFloor = 0.6
	estimateSpan  = 0.4
)

// Image is a retinal scan to classify. An empty ContentType is sniffed
// from the first bytes of Body.
type Image struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// PredictDisease uploads img for classification under the session's
// patient id. Nothing is sent when img is missing or not an image, or when
// the session holds no id.
func (c *Client) PredictDisease(ctx context.Context, sess *session.Session, img Image) (*Prediction, error) {
	if img.Body == nil || strings.TrimSpace(img.Filename) == "" {
		return nil, c.fail("predict", errors.NewValidation("Please upload a retinal scan to proceed", nil))
	}

	reader := bufio.NewReader(img.Body)
	contentType := img.ContentType
	if contentType == "" {
		head, _ := reader.Peek(512)
		contentType = http.DetectContentType(head)
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, c.fail("predict", errors.NewValidation(
			fmt.Sprintf("unsupported file type %q, please upload an image", contentType), nil))
	}

	patientID, err := requireSession(ctx, sess)
	if err != nil {
		return nil, c.fail("predict", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(img.Filename)))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, c.fail("predict", errors.NewInternal(err))
	}
	if _, err := io.Copy(part, reader); err != nil {
		return nil, c.fail("predict", errors.NewValidation("failed to read uploaded image", err))
	}
	if err := mw.WriteField("uuid", patientID); err != nil {
		return nil, c.fail("predict", errors.NewInternal(err))
	}
	if err := mw.Close(); err != nil {
		return nil, c.fail("predict", errors.NewInternal(err))
	}

	req, err := c.newRequest(ctx, http.MethodPost, endpointPredict, nil, &buf, mw.FormDataContentType())
	if err != nil {
		return nil, c.fail("predict", err)
	}
	body, err := c.do(req, endpointPredict)
	if err != nil {
		return nil, c.fail("predict", err)
	}

	var wire predictionWire
	if err := c.decode(endpointPredict, body, &wire); err != nil {
		return nil, c.fail("predict", err)
	}

	return &Prediction{
		PredictedClass: wire.PredictedClass,
		Confidence:     *wire.Confidence,
	}, nil
}

// GetPatientHistory lists past predictions of the session's patient.
func (c *Client) GetPatientHistory(ctx context.Context, sess *session.Session) ([]HistoryItem, error) {
	patientID, err := requireSession(ctx, sess)
	if err != nil {
		return nil, c.fail("history", err)
	}

	query := url.Values{}
	query.Set("uuid", patientID)
	req, err := c.newRequest(ctx, http.MethodGet, endpointHistory, query, nil, "")
	if err != nil {
		return nil, c.fail("history", err)
	}
	body, err := c.do(req, endpointHistory)
	if err != nil {
		return nil, c.fail("history", err)
	}

	var wire []historyWire
	if err := c.decode(endpointHistory, body, &wire); err != nil {
		return nil, c.fail("history", err)
	}

	items := make([]HistoryItem, 0, len(wire))
	for i, w := range wire {
		id := w.identifier()
		if id == "" {
			return nil, c.fail("history", errors.NewMalformed(endpointHistory,
				fmt.Errorf("item %d: id is required", i)))
		}
		item := HistoryItem{
			ID:             id,
			PatientID:      w.UUID,
			PredictedClass: w.PredictedClass,
			Confidence:     w.Confidence,
			Timestamp:      w.Timestamp,
		}
		if item.Confidence == nil && c.backfill {
			estimate := estimateFloor + c.estimate()*estimateSpan
			item.Confidence = &estimate
			item.ConfidenceEstimated = true
		}
		items = append(items, item)
	}
	return items, nil
}
