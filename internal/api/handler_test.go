package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/card-statement-parser/internal/extractor"
	"github.com/insightdelivered/card-statement-parser/internal/parser"
)

const hdfcText = `HDFC BANK
We understand your world
Regalia Credit Card Statement
Card No: 4567 89XX XXXX 1234
Statement Date: 20/07/2024
Billing Period: 21/06/2024 to 20/07/2024
Payment Due Date: 05/08/2024
Total dues: 12,345.67
`

func setupTestApp() *fiber.App {
	d := parser.NewDispatcher(parser.DefaultRegistry(parser.Options{}))
	return NewApp(NewHandler(d, nil, 1<<20, "test"))
}

// multipartRequest builds a POST /api/parse request from form fields and
// an optional file.
func multipartRequest(t *testing.T, fields map[string]string, fileName string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/parse", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, resp *http.Response) ParseResponse {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out ParseResponse
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	app := setupTestApp()

	req := httptest.NewRequest("GET", "/api/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result map[string]string
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if result["status"] != "ok" {
		t.Errorf("expected status=ok, got %q", result["status"])
	}
	if result["engine"] != "fiber" {
		t.Errorf("expected engine=fiber, got %q", result["engine"])
	}
	if result["version"] != "test" {
		t.Errorf("expected version=test, got %q", result["version"])
	}
}

func TestRequestID(t *testing.T) {
	app := setupTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	require.NoError(t, err)
	_, err = uuid.Parse(resp.Header.Get(RequestIDHeader))
	assert.NoError(t, err)

	want := uuid.NewString()
	req := httptest.NewRequest("GET", "/api/health", nil)
	req.Header.Set(RequestIDHeader, want)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, want, resp.Header.Get(RequestIDHeader))
}

func TestParseEndpointRequiresFile(t *testing.T) {
	app := setupTestApp()

	resp, err := app.Test(multipartRequest(t, nil, "", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	out := decode(t, resp)
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.RequestID)
}

func TestParseEndpointText(t *testing.T) {
	app := setupTestApp()

	resp, err := app.Test(multipartRequest(t, map[string]string{"text": hdfcText}, "", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decode(t, resp)
	require.True(t, out.Success)
	require.NotNil(t, out.Statement)
	assert.Equal(t, "HDFC", out.Statement.Issuer)
	assert.Equal(t, "05/08/2024", out.Statement.PaymentDueDate)
	assert.Equal(t, "₹12,345.67", out.Statement.TotalBalance)
	assert.Equal(t, resp.Header.Get(RequestIDHeader), out.RequestID)
	assert.Empty(t, out.RawText)
}

func TestParseEndpointUnknownText(t *testing.T) {
	app := setupTestApp()

	resp, err := app.Test(multipartRequest(t, map[string]string{"text": "hello world", "debug": "true"}, "", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decode(t, resp)
	assert.Equal(t, "Unknown", out.Statement.Issuer)
	assert.Equal(t, "N/A", out.Statement.TotalBalance)
	assert.Equal(t, "hello world", out.RawText)
}

func TestParseEndpointRejectsNonPDF(t *testing.T) {
	app := setupTestApp()

	resp, err := app.Test(multipartRequest(t, nil, "statement.pdf", []byte("not really a pdf")))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode(t, resp).Error, "PDF")
}

func TestParseEndpointMalformedPDF(t *testing.T) {
	app := setupTestApp()

	resp, err := app.Test(multipartRequest(t, nil, "broken.pdf", []byte("%PDF-1.4\ngarbage without objects\n")))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	out := decode(t, resp)
	assert.Equal(t, "malformed", out.ErrorKind)
}

// lockedStatement returns a one-page statement PDF protected by password.
func lockedStatement(t *testing.T, password string) []byte {
	t.Helper()
	content := "BT\n/F1 12 Tf\n72 720 Td\n(HDFC Bank Credit Card Statement) Tj\n" +
		"0 -16 Td\n(Payment Due Date: 05/08/2024) Tj\n0 -16 Td\n(Total Dues: 12,345.67) Tj\nET\n"
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(content), content),
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	var out bytes.Buffer
	conf := model.NewRC4Configuration(password, password, 128)
	require.NoError(t, pdfapi.Encrypt(bytes.NewReader(buf.Bytes()), &out, conf))
	return out.Bytes()
}

func TestParseEndpointPassword(t *testing.T) {
	app := setupTestApp()
	data := lockedStatement(t, "0508")

	resp, err := app.Test(multipartRequest(t, nil, "locked.pdf", data))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "credential", decode(t, resp).ErrorKind)

	resp, err = app.Test(multipartRequest(t, map[string]string{"password": "nope"}, "locked.pdf", data))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(multipartRequest(t, map[string]string{"password": "0508"}, "locked.pdf", data))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decode(t, resp)
	assert.Equal(t, "HDFC", out.Statement.Issuer)
	assert.Equal(t, "₹12,345.67", out.Statement.TotalBalance)
}

func TestParseEndpointTooLarge(t *testing.T) {
	d := parser.NewDispatcher(parser.DefaultRegistry(parser.Options{}))
	app := NewApp(NewHandler(d, nil, 16, "test"))

	resp, err := app.Test(multipartRequest(t, nil, "big.pdf", []byte("%PDF-1.4\n"+strings.Repeat("0", 64))))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{
			name:       "credential",
			err:        &extractor.Error{Kind: extractor.KindCredential, Op: "decrypt", Err: errors.New("wrong password")},
			wantStatus: fiber.StatusUnauthorized,
			wantKind:   "credential",
		},
		{
			name:       "malformed",
			err:        &extractor.Error{Kind: extractor.KindMalformed, Op: "extract", Err: errors.New("no text")},
			wantStatus: fiber.StatusUnprocessableEntity,
			wantKind:   "malformed",
		},
		{
			name:       "other",
			err:        errors.New("boom"),
			wantStatus: fiber.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, kind := statusFor(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}
