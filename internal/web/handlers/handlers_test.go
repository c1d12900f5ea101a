package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ViralGen-admin/internal/clients/gemini"
	"ViralGen-admin/internal/config"
	"ViralGen-admin/internal/credential"
	"ViralGen-admin/internal/logging"
	"ViralGen-admin/internal/media"
	"ViralGen-admin/internal/models"
	"ViralGen-admin/internal/services"
	"ViralGen-admin/internal/storage/staging"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	mp4Bytes = []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0, 0, 0x02, 0, 'i', 's', 'o', 'm'}
	pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
)

func sampleResult() models.AnalysisResult {
	return models.AnalysisResult{
		Title:                  "磁吸行動電源 <爆款>",
		ViralScore:             8.5,
		ViralScoreBreakdown:    models.ViralScoreBreakdown{HookStrength: 9, Pacing: 8, PainPoint: 7, CallToAction: 6},
		RewrittenScriptCN:      "第一行\n第二行",
		ConsolidatedSoraPrompt: "Shot 1: close-up",
		Structure:              []models.SceneAnalysis{{Timestamp: "00:00 - 00:03", SoraPrompt: "close-up"}},
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{gemini.NewError(gemini.ErrMissingCredential, ""), http.StatusBadRequest, "MISSING_CREDENTIAL"},
		{gemini.NewError(gemini.ErrInvalidRequest, "缺少影片"), http.StatusBadRequest, "INVALID_REQUEST"},
		{gemini.NewError(gemini.ErrCallInProgress, ""), http.StatusConflict, "CALL_IN_PROGRESS"},
		{gemini.NewError(gemini.ErrEmptyResponse, ""), http.StatusBadGateway, "EMPTY_RESPONSE"},
		{gemini.NewError(gemini.ErrMalformedResponse, ""), http.StatusBadGateway, "MALFORMED_RESPONSE"},
		{gemini.NewError(gemini.ErrIncompleteResult, ""), http.StatusBadGateway, "INCOMPLETE_RESULT"},
		{gemini.NewError(gemini.ErrPayloadOrNetwork, ""), http.StatusBadGateway, "PAYLOAD_OR_NETWORK"},
		{gemini.NewError(gemini.ErrBackend, ""), http.StatusBadGateway, "BACKEND_ERROR"},
		{fmt.Errorf("%w (12.00 MB)", media.ErrVideoTooLarge), http.StatusRequestEntityTooLarge, "VIDEO_TOO_LARGE"},
		{media.ErrNotVideo, http.StatusBadRequest, "INVALID_UPLOAD"},
		{credential.ErrBlankKey, http.StatusBadRequest, "BLANK_CREDENTIAL"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		status, code := statusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.code)
		assert.Equal(t, tc.code, code)
	}
}

func TestWriteFailure_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeFailure(rec, errors.New("open /secret/path: permission denied"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "內部伺服器錯誤", body.Error)
	assert.NotContains(t, body.Error, "/secret/path")
}

func TestCredentialHandler(t *testing.T) {
	p := credential.NewMemoryProvider()
	h := NewCredentialHandler(p, logging.Discard())

	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/api/credential", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"saved":false}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.Save(rec, httptest.NewRequest(http.MethodPut, "/api/credential", strings.NewReader(`{"apiKey":"AIzaSyTESTKEY0000WXYZ"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var st credential.Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	assert.True(t, st.Saved)
	assert.NotContains(t, st.Masked, "TESTKEY")

	rec = httptest.NewRecorder()
	h.Save(rec, httptest.NewRequest(http.MethodPut, "/api/credential", strings.NewReader(`{"apiKey":"   "}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BLANK_CREDENTIAL", decodeError(t, rec).Code)

	// 未確認時不會清除
	rec = httptest.NewRecorder()
	h.Clear(rec, httptest.NewRequest(http.MethodDelete, "/api/credential", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CONFIRMATION_REQUIRED", decodeError(t, rec).Code)
	key, _ := p.Load(context.Background())
	assert.Equal(t, "AIzaSyTESTKEY0000WXYZ", key)

	rec = httptest.NewRecorder()
	h.Clear(rec, httptest.NewRequest(http.MethodDelete, "/api/credential?confirm=true", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	key, _ = p.Load(context.Background())
	assert.Empty(t, key)
}

type uploadFixture struct {
	handler *UploadHandler
	store   *staging.FileSystemStorage
}

func newUploadFixture(t *testing.T) uploadFixture {
	t.Helper()
	store, err := staging.NewFileSystemStorage(config.StagingConfig{Path: filepath.Join(t.TempDir(), "staging")}, logging.Discard())
	require.NoError(t, err)
	uploads, err := services.NewUploadService(media.UploadLimits{MaxVideoBytes: 64, MaxImageBytes: 64}, store, logging.Discard())
	require.NoError(t, err)
	return uploadFixture{handler: NewUploadHandler(uploads, logging.Discard()), store: store}
}

func multipartRequest(t *testing.T, target, field, fileName string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadHandler_Video(t *testing.T) {
	f := newUploadFixture(t)

	rec := httptest.NewRecorder()
	f.handler.Video(rec, multipartRequest(t, "/api/uploads/video", "file", "clip.mp4", mp4Bytes))
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp uploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "video", resp.Kind)
	assert.Equal(t, "video/mp4", resp.MIMEType)
	assert.Equal(t, int64(len(mp4Bytes)), resp.Size)

	staged, err := f.store.Get(resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", staged.FileName)
}

func TestUploadHandler_Rejections(t *testing.T) {
	f := newUploadFixture(t)

	t.Run("影片超過上限", func(t *testing.T) {
		rec := httptest.NewRecorder()
		big := append(append([]byte{}, mp4Bytes...), make([]byte, 100)...)
		f.handler.Video(rec, multipartRequest(t, "/api/uploads/video", "file", "big.mp4", big))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, "VIDEO_TOO_LARGE", decodeError(t, rec).Code)
	})

	t.Run("圖片超過上限", func(t *testing.T) {
		rec := httptest.NewRecorder()
		big := append(append([]byte{}, pngBytes...), make([]byte, 100)...)
		f.handler.Image(rec, multipartRequest(t, "/api/uploads/image", "file", "big.png", big))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, "IMAGE_TOO_LARGE", decodeError(t, rec).Code)
	})

	t.Run("圖片請求本體超過上限", func(t *testing.T) {
		rec := httptest.NewRecorder()
		big := append(append([]byte{}, pngBytes...), make([]byte, 2*multipartOverhead)...)
		f.handler.Image(rec, multipartRequest(t, "/api/uploads/image", "file", "huge.png", big))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, "IMAGE_TOO_LARGE", decodeError(t, rec).Code)
	})

	t.Run("非影片檔案", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.Video(rec, multipartRequest(t, "/api/uploads/video", "file", "notes.txt", []byte("just some text")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_UPLOAD", decodeError(t, rec).Code)
	})

	t.Run("缺少 file 欄位", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.Image(rec, multipartRequest(t, "/api/uploads/image", "other", "p.png", []byte("x")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "MISSING_FILE", decodeError(t, rec).Code)
	})
}

type fakeRunner struct {
	in     services.AnalyzeInput
	result *models.AnalysisResult
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, in services.AnalyzeInput) (*models.AnalysisResult, error) {
	f.in = in
	return f.result, f.err
}

func TestTriggerAnalysisHandler(t *testing.T) {
	t.Run("成功回傳結果", func(t *testing.T) {
		result := sampleResult()
		runner := &fakeRunner{result: &result}
		h := NewTriggerAnalysisHandler(runner, logging.Discard())

		rec := httptest.NewRecorder()
		body := `{"videoId":"v1","imageId":"i1","description":"磁吸行動電源","variant":"rhythm-clone"}`
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, services.AnalyzeInput{VideoID: "v1", ImageID: "i1", Description: "磁吸行動電源", Variant: "rhythm-clone"}, runner.in)
		var resp analyzeResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, result.ConsolidatedSoraPrompt, resp.Result.ConsolidatedSoraPrompt)
	})

	t.Run("無效 JSON", func(t *testing.T) {
		h := NewTriggerAnalysisHandler(&fakeRunner{}, logging.Discard())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_JSON", decodeError(t, rec).Code)
	})

	t.Run("分析進行中", func(t *testing.T) {
		h := NewTriggerAnalysisHandler(&fakeRunner{err: gemini.NewError(gemini.ErrCallInProgress, "")}, logging.Discard())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("格式錯誤的回應不外洩原始內容", func(t *testing.T) {
		err := &gemini.Error{Kind: gemini.ErrMalformedResponse, RawText: "not json at all"}
		h := NewTriggerAnalysisHandler(&fakeRunner{err: err}, logging.Discard())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "MALFORMED_RESPONSE", body.Code)
		assert.NotContains(t, body.Error, "not json at all")
	})
}

func TestExportHandler(t *testing.T) {
	now := time.Date(2026, 3, 9, 10, 30, 0, 0, time.UTC)
	h := NewExportHandler(func() time.Time { return now }, logging.Discard())
	payload, err := json.Marshal(sampleResult())
	require.NoError(t, err)

	t.Run("匯出 Word 文件", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Export(rec, httptest.NewRequest(http.MethodPost, "/api/export", bytes.NewReader(payload)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/msword", rec.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=viral_analysis_2026-03-09.doc", rec.Header().Get("Content-Disposition"))
		assert.Contains(t, rec.Body.String(), "磁吸行動電源 &lt;爆款&gt;")
		assert.Contains(t, rec.Body.String(), "Shot 1: close-up")
	})

	t.Run("渲染結果片段", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Render(rec, httptest.NewRequest(http.MethodPost, "/api/render", bytes.NewReader(payload)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "第一行<br/>第二行")
		assert.NotContains(t, rec.Body.String(), "<爆款>")
	})

	t.Run("無效內容", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Export(rec, httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader("nope")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestVideoHandler(t *testing.T) {
	store, err := staging.NewFileSystemStorage(config.StagingConfig{Path: t.TempDir()}, logging.Discard())
	require.NoError(t, err)
	staged, err := store.Save(models.MediaKindVideo, "clip.mp4", "video/mp4", mp4Bytes)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Method(http.MethodGet, "/media/{id}", NewVideoHandler(store, logging.Discard()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/"+staged.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	assert.Equal(t, mp4Bytes, rec.Body.Bytes())

	// 支援 Range 請求
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/media/"+staged.ID, nil)
	req.Header.Set("Range", "bytes=4-7")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "ftyp", rec.Body.String())

	for _, id := range []string{"00000000-0000-0000-0000-000000000000", "not-a-uuid"} {
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
	}
}

func TestDashboardHandler(t *testing.T) {
	p := credential.NewMemoryProvider()
	require.NoError(t, p.Save(context.Background(), "AIzaSyTESTKEY0000WXYZ"))

	h, err := NewDashboardHandler(p, DashboardOptions{
		AppName:        "ViralGen",
		DefaultVariant: models.VariantRhythmClone,
		MaxVideoBytes:  10 * 1024 * 1024,
		MaxImageBytes:  20 * 1024 * 1024,
	}, logging.Discard())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	page := rec.Body.String()
	assert.Contains(t, page, "Key 已保存")
	assert.NotContains(t, page, "AIzaSyTESTKEY0000WXYZ")
	assert.Contains(t, page, "10MB 以下")
	assert.Contains(t, page, `id="video-drop" class="dropzone" data-kind="video" data-max-bytes="10485760"`)
	assert.Contains(t, page, `id="image-drop" class="dropzone" data-kind="image" data-max-bytes="20971520"`)
	assert.Contains(t, page, `addEventListener("dragover"`)
	assert.Contains(t, page, `addEventListener("drop"`)
	assert.Contains(t, page, "file.size > max")
	assert.Contains(t, page, `<option value="rhythm-clone" selected>`)
	for _, v := range models.Variants() {
		assert.Contains(t, page, fmt.Sprintf(`value="%s"`, v))
	}
}
