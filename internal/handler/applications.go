package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/loanbridge/apply/internal/mailer"
	"github.com/loanbridge/apply/internal/model"
	"github.com/loanbridge/apply/internal/store"
	"github.com/loanbridge/apply/internal/validate"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// ApplicationHandler owns the loan-application intake and dashboard APIs.
type ApplicationHandler struct {
	BaseHandler
	store           *store.ApplicationStore
	sender          mailer.Sender
	uploadDir       string
	maxUploadSizeMB int

	// notification target; empty disables intake emails
	destinationEmail string
	fromEmail        string
}

func NewApplicationHandler(
	logger *slog.Logger,
	st *store.ApplicationStore,
	sender mailer.Sender,
	uploadDir string,
	maxUploadSizeMB int,
	destinationEmail, fromEmail string,
) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:      BaseHandler{Logger: logger},
		store:            st,
		sender:           sender,
		uploadDir:        uploadDir,
		maxUploadSizeMB:  maxUploadSizeMB,
		destinationEmail: destinationEmail,
		fromEmail:        fromEmail,
	}
}

// Submit handles the public application form: validate fields, persist the
// application, stash any bank statements and notify the configured inbox.
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	maxSize := int64(h.maxUploadSizeMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "form too large or invalid")
		return
	}
	defer r.MultipartForm.RemoveAll()

	form := normalizeForm(r.MultipartForm.Value)
	if form["has_owner_1"] == "" {
		form["has_owner_1"] = "No"
	}

	if errs := validate.Fields(form); len(errs) > 0 {
		h.Logger.Info("application rejected", "invalid_fields", len(errs))
		_ = h.writeJSON(w, http.StatusBadRequest, envelope{"errors": errs}, nil)
		return
	}

	app := applicationFromForm(form)
	id, err := h.store.Insert(r.Context(), app)
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	app.ID = id

	files, err := h.saveUploads(r.Context(), id, r.MultipartForm.File["bank_files"], model.DocTypeBankStatement)
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	h.Logger.Info("application received",
		"id", id,
		"business", app.BusinessLegalName,
		"owners", len(app.Owners),
		"bank_files", len(files),
	)

	// Delivery problems are the operator's to chase; the applicant is done.
	if h.destinationEmail != "" {
		if err := h.notify(app, files); err != nil {
			h.Logger.Error("application notification failed", "id", id, "error", err)
		}
	}

	_ = h.writeJSON(w, http.StatusCreated, envelope{"id": id}, nil)
}

// UploadDocuments accepts follow-up documents (voided check, photo ID) for
// an existing application.
func (h *ApplicationHandler) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		h.notFoundResponse(w, r)
		return
	}

	if _, err := h.store.Get(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.notFoundResponse(w, r)
		} else {
			h.serverErrorResponse(w, r, err)
		}
		return
	}

	maxSize := int64(h.maxUploadSizeMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "form too large or invalid")
		return
	}
	defer r.MultipartForm.RemoveAll()

	uploaded := []string{}
	for _, docType := range []string{model.DocTypeVoidedCheck, model.DocTypeIDDocument} {
		files, err := h.saveUploads(r.Context(), id, r.MultipartForm.File[docType], docType)
		if err != nil {
			h.serverErrorResponse(w, r, err)
			return
		}
		if len(files) > 0 {
			uploaded = append(uploaded, docType)
		}
	}

	h.Logger.Info("documents uploaded", "id", id, "types", uploaded)
	_ = h.writeJSON(w, http.StatusOK, envelope{"id": id, "uploaded": uploaded}, nil)
}

// List returns stored applications newest first.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultListLimit)
	if limit < 1 || limit > maxListLimit {
		limit = defaultListLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	apps, err := h.store.List(r.Context(), limit, offset)
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	_ = h.writeJSON(w, http.StatusOK, apps, nil)
}

// Get returns one application with its file metadata.
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		h.notFoundResponse(w, r)
		return
	}

	app, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.notFoundResponse(w, r)
		} else {
			h.serverErrorResponse(w, r, err)
		}
		return
	}

	files, err := h.store.Files(r.Context(), id)
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	for _, f := range files {
		f.URL = "/uploads/" + url.PathEscape(filepath.Base(f.StoragePath))
	}

	_ = h.writeJSON(w, http.StatusOK, envelope{"application": app, "files": files}, nil)
}

// saveUploads writes each part to the upload directory and records a
// metadata row. Filenames are stored as {id}__{docType}__{name}.
func (h *ApplicationHandler) saveUploads(ctx context.Context, id int64, parts []*multipart.FileHeader, docType string) ([]*model.ApplicationFile, error) {
	var saved []*model.ApplicationFile

	for _, fh := range parts {
		if fh.Filename == "" {
			continue
		}
		safe := sanitizeFilename(fh.Filename)
		dest := filepath.Join(h.uploadDir, fmt.Sprintf("%d__%s__%s", id, docType, safe))

		src, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %q: %w", safe, err)
		}
		size, err := copyToFile(dest, src)
		src.Close()
		if err != nil {
			return nil, fmt.Errorf("store upload %q: %w", safe, err)
		}

		f := &model.ApplicationFile{
			ApplicationID: id,
			Filename:      safe,
			StoragePath:   dest,
			SizeBytes:     size,
			DocType:       docType,
		}
		if f.ID, err = h.store.InsertFile(ctx, f); err != nil {
			return nil, err
		}
		saved = append(saved, f)
	}

	return saved, nil
}

// notify relays an application summary, with the stored bank statements
// attached, through the same transport the relay endpoint uses.
func (h *ApplicationHandler) notify(app *model.Application, files []*model.ApplicationFile) error {
	msg := mailer.Message{
		From:    h.fromEmail,
		To:      h.destinationEmail,
		Subject: fmt.Sprintf("New loan application: %s", app.BusinessLegalName),
		Text:    app.Summary(),
	}
	if msg.From == "" {
		msg.From = h.destinationEmail
	}

	for _, f := range files {
		data, err := os.ReadFile(f.StoragePath)
		if err != nil {
			return fmt.Errorf("read stored upload %q: %w", f.Filename, err)
		}
		msg.Attachments = append(msg.Attachments, mailer.Attachment{
			Filename: f.Filename,
			Content:  base64.StdEncoding.EncodeToString(data),
		})
	}

	result, err := h.sender.Send(msg)
	if err != nil {
		return err
	}
	h.Logger.Info("application notification sent", "id", app.ID, "message_id", result.MessageID)
	return nil
}

// applicationFromForm maps validated form fields onto an Application.
func applicationFromForm(form map[string]string) *model.Application {
	loanAmount, err := strconv.ParseFloat(form["loan_amount"], 64)
	if err != nil {
		loanAmount = 0
	}

	var owners []string
	if name := strings.TrimSpace(form["owner_0_first"] + " " + form["owner_0_last"]); name != "" {
		owners = append(owners, name)
	}
	if validate.HasSecondOwner(form) {
		if name := strings.TrimSpace(form["owner_1_first"] + " " + form["owner_1_last"]); name != "" {
			owners = append(owners, name)
		}
	}

	return &model.Application{
		BusinessLegalName: form["business_legal_name"],
		Industry:          form["industry"],
		LoanAmount:        loanAmount,
		Owners:            owners,
		Payload:           form,
		EIN:               form["ein"],
		BusinessPhone:     form["business_phone"],
		CompanyWebsite:    form["company_website"],
	}
}

// normalizeForm flattens multipart values to their first entry, trimmed.
func normalizeForm(values map[string][]string) map[string]string {
	form := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			form[k] = strings.TrimSpace(v[0])
		}
	}
	return form
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// sanitizeFilename removes path components and dangerous characters.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "\x00", "")
	if len(name) > 100 {
		name = name[:100]
	}
	if name == "" {
		name = "attachment"
	}
	return name
}

// copyToFile writes src to dest and returns the number of bytes written.
func copyToFile(dest string, src io.Reader) (int64, error) {
	out, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}
