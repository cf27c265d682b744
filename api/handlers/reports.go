package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/BaSui01/medidash/internal/reports"
	"github.com/BaSui01/medidash/types"
)

// maxUploadSize 报表上传上限
const maxUploadSize = 10 << 20

// =============================================================================
// 📊 报表模板 Handler
// =============================================================================

// ReportHandler 报表模板下载与上传校验
type ReportHandler struct {
	logger *zap.Logger
}

// NewReportHandler 创建报表处理器
func NewReportHandler(logger *zap.Logger) *ReportHandler {
	return &ReportHandler{logger: logger.With(zap.String("handler", "reports"))}
}

// HandleListTemplates 处理 GET /api/v1/reports/templates
func (h *ReportHandler) HandleListTemplates(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, reports.Describe())
}

// HandleTemplate 处理 GET /api/v1/reports/templates/{type}，返回 CSV 附件
func (h *ReportHandler) HandleTemplate(w http.ResponseWriter, r *http.Request) {
	t := reports.Type(r.PathValue("type"))
	data, ok := reports.Template(t)
	if !ok {
		WriteErrorMessage(w, http.StatusNotFound, types.ErrNotFound, "Unknown report type: "+string(t), h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reports.Filename(t)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleValidate 处理 POST /api/v1/reports/{type}/validate，请求体为 CSV 原文
func (h *ReportHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	t := reports.Type(r.PathValue("type"))
	if _, ok := reports.Columns(t); !ok {
		WriteErrorMessage(w, http.StatusNotFound, types.ErrNotFound, "Unknown report type: "+string(t), h.logger)
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxUploadSize)
	summary, err := reports.ValidateUpload(t, body)
	if err != nil {
		WriteError(w, uploadError(err), h.logger)
		return
	}

	WriteSuccess(w, summary)
}

func uploadError(err error) *types.Error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return types.NewError(types.ErrInvalidRequest, fmt.Sprintf("upload exceeds %d bytes", maxUploadSize)).
			WithHTTPStatus(http.StatusRequestEntityTooLarge)
	}

	var mismatch *reports.HeaderMismatchError
	if errors.As(err, &mismatch) {
		return types.NewError(types.ErrInvalidRequest, "CSV header does not match the template").
			WithDetails(mismatch.Error()).
			WithHTTPStatus(http.StatusBadRequest)
	}

	message := "Invalid CSV upload"
	if errors.Is(err, reports.ErrEmptyUpload) {
		message = "Uploaded file is empty"
	}
	return types.NewError(types.ErrInvalidRequest, message).
		WithCause(err).
		WithDetails(err.Error()).
		WithHTTPStatus(http.StatusBadRequest)
}
