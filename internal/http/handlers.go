package http

import (
	"errors"
	"net/http"
	"strings"

	"billed/internal/bill"
	"billed/internal/core"
	applog "billed/internal/log"
	"billed/internal/session"
)

const maxUploadBytes = 10 << 20

// invalidFileMessage is shown when a selected receipt is not an accepted
// image type. The selection itself is dropped; a prior valid file stays.
const invalidFileMessage = "Seuls les fichiers png, jpg et jpeg sont acceptés"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	u, ok := session.FromRequest(r).CurrentUser()
	switch {
	case !ok:
		http.Redirect(w, r, "/session", http.StatusSeeOther)
	case u.Type == "Admin":
		http.Redirect(w, r, "/admin/bills", http.StatusSeeOther)
	default:
		http.Redirect(w, r, bill.PathBills, http.StatusSeeOther)
	}
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "login.html", nil)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusBadRequest)
			s.render(w, r, "login.html", map[string]string{"Error": "Formulaire invalide"})
			return
		}
		userType := sanitizeInput(r.Form.Get("user-type"))
		if userType != "Admin" {
			userType = "Employee"
		}
		u := core.User{
			Type:  userType,
			Email: sanitizeInput(r.Form.Get("email")),
		}
		if err := session.Write(w, u); err != nil {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed writing session cookie", applog.FieldError, err)
			http.Error(w, "session error", http.StatusInternalServerError)
			return
		}
		if u.Type == "Admin" {
			http.Redirect(w, r, "/admin/bills", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, bill.PathBills, http.StatusSeeOther)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session.Clear(w)
	http.Redirect(w, r, "/session", http.StatusSeeOther)
}

func (s *Server) handleBills(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderBillList(w, r)
	case http.MethodPost:
		s.handleCreateBill(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type billsPage struct {
	Loading bool
	Error   bool
	Message string
	Rows    []bill.Row
	Email   string
}

func (s *Server) renderBillList(w http.ResponseWriter, r *http.Request) {
	nav := &redirectNavigator{w: w, r: r}
	ctrl := bill.NewListController(cachingStore{s}, nav, &captureModal{})
	defer ctrl.Teardown()

	view := ctrl.Load(r.Context())

	page := billsPage{
		Loading: view.State == bill.StateLoading,
		Error:   view.State == bill.StateError,
		Message: view.Message,
		Rows:    view.Rows,
	}
	if u, ok := session.FromRequest(r).CurrentUser(); ok {
		page.Email = u.Email
	}
	if page.Error {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Bill list failed to load",
			applog.FieldOperation, applog.OpList,
			applog.FieldError, page.Message)
	}

	s.render(w, r, "bills.html", page)
}

type newBillPage struct {
	Types []string
	Form  bill.Form
	Error string
	Email string
}

func (s *Server) handleNewBillForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.renderNewBillForm(w, r, http.StatusOK, "", bill.Form{})
}

func (s *Server) renderNewBillForm(w http.ResponseWriter, r *http.Request, status int, errMsg string, form bill.Form) {
	page := newBillPage{
		Types: core.ExpenseTypes,
		Form:  form,
		Error: errMsg,
	}
	if u, ok := session.FromRequest(r).CurrentUser(); ok {
		page.Email = u.Email
	}
	if status != http.StatusOK {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
	}
	s.render(w, r, "new_bill.html", page)
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Parse multipart form error", applog.FieldError, err)
		s.renderNewBillForm(w, r, http.StatusBadRequest, "Formulaire invalide", bill.Form{})
		return
	}

	form := bill.Form{
		Type:       sanitizeInput(r.FormValue("expense-type")),
		Name:       sanitizeInput(r.FormValue("expense-name")),
		Date:       sanitizeInput(r.FormValue("datepicker")),
		Amount:     sanitizeInput(r.FormValue("amount")),
		VAT:        sanitizeInput(r.FormValue("vat")),
		Pct:        sanitizeInput(r.FormValue("pct")),
		Commentary: sanitizeInput(r.FormValue("commentary")),
	}

	nav := &redirectNavigator{w: w, r: r}
	ctrl := bill.NewNewBillController(cachingStore{s}, nav, session.FromRequest(r))

	f, fh, err := r.FormFile("file")
	switch {
	case err == nil:
		defer f.Close()
		attached := core.AttachedFile{
			Name:     fh.Filename,
			MIMEType: fh.Header.Get("Content-Type"),
			Handle:   f,
		}
		if !ctrl.HandleChangeFile(attached) {
			s.renderNewBillForm(w, r, http.StatusUnprocessableEntity, invalidFileMessage, form)
			return
		}
		if s.uploads != nil {
			fileURL, fileName, err := s.uploads.Save(attached)
			if err != nil {
				applog.FromContext(r.Context()).ErrorContext(r.Context(), "Receipt upload failed",
					applog.FieldOperation, applog.OpUpload,
					applog.FieldFileName, fh.Filename,
					applog.FieldError, err)
				s.renderNewBillForm(w, r, http.StatusInternalServerError, "Le justificatif n'a pas pu être enregistré", form)
				return
			}
			ctrl.SetFileLocation(fileURL, fileName)
		}
	case errors.Is(err, http.ErrMissingFile):
		// No receipt attached; the draft goes out with fileUrl/fileName null.
	default:
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Receipt read error", applog.FieldError, err)
		s.renderNewBillForm(w, r, http.StatusBadRequest, "Formulaire invalide", form)
		return
	}

	if err := ctrl.HandleSubmit(r.Context(), form); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrInvalidAmount) || errors.Is(err, core.ErrInvalidPct) {
			status = http.StatusUnprocessableEntity
		}
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Bill submission failed",
			applog.FieldOperation, applog.OpCreate,
			applog.FieldError, err)
		s.renderNewBillForm(w, r, status, ctrl.ErrorMessage(), form)
		return
	}

	// Success: the controller navigated back to the bill list.
	if created := ctrl.Created(); created != nil {
		s.httpLog.LogBillCreated(r.Context(), created.ID, created.Type, string(created.Status), created.Amount)
	}
}

type previewPage struct {
	FileURL  string
	FileName string
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.NotFound(w, r)
		return
	}

	bills, err := cachingStore{s}.List(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Preview list error", applog.FieldError, err)
		http.Error(w, bill.FailureMessage(err), http.StatusBadGateway)
		return
	}

	modal := &captureModal{}
	ctrl := bill.NewListController(cachingStore{s}, &redirectNavigator{w: w, r: r}, modal)
	defer ctrl.Teardown()

	for _, b := range bills {
		if b.ID == id {
			ctrl.HandleClickIconEye(b)
			break
		}
	}
	if !modal.opened {
		// Unknown bill or a bill without a receipt: nothing to preview.
		http.NotFound(w, r)
		return
	}

	s.render(w, r, "modal.html", previewPage{FileURL: modal.fileURL, FileName: modal.fileName})
}

type adminPage struct {
	Error     bool
	Message   string
	Pending   []bill.Row
	Accepted  []bill.Row
	Refused   []bill.Row
	CanReview bool
}

func (s *Server) handleAdminBills(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	u, ok := session.FromRequest(r).CurrentUser()
	if !ok || u.Type != "Admin" {
		http.Redirect(w, r, "/session", http.StatusSeeOther)
		return
	}

	ctrl := bill.NewListController(cachingStore{s}, &redirectNavigator{w: w, r: r}, &captureModal{})
	defer ctrl.Teardown()

	view := ctrl.Load(r.Context())

	page := adminPage{CanReview: s.reviewer != nil}
	if view.State == bill.StateError {
		page.Error = true
		page.Message = view.Message
	}
	for _, row := range view.Rows {
		switch row.Bill.Status {
		case core.StatusAccepted:
			page.Accepted = append(page.Accepted, row)
		case core.StatusRefused:
			page.Refused = append(page.Refused, row)
		default:
			page.Pending = append(page.Pending, row)
		}
	}

	s.render(w, r, "admin.html", page)
}

func (s *Server) handleAdminReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	u, ok := session.FromRequest(r).CurrentUser()
	if !ok || u.Type != "Admin" {
		http.Redirect(w, r, "/session", http.StatusSeeOther)
		return
	}

	if s.reviewer == nil {
		http.Error(w, "review is not available on this backend", http.StatusServiceUnavailable)
		return
	}

	// Path shape: /admin/bills/{id}/review
	rest := strings.TrimPrefix(r.URL.Path, "/admin/bills/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "review" {
		http.NotFound(w, r)
		return
	}
	id := parts[0]

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	var status core.Status
	switch r.Form.Get("decision") {
	case "accept":
		status = core.StatusAccepted
	case "refuse":
		status = core.StatusRefused
	default:
		http.Error(w, "unknown decision", http.StatusBadRequest)
		return
	}
	comment := sanitizeInput(r.Form.Get("comment-admin"))

	if err := s.reviewer.UpdateStatus(r.Context(), id, status, comment); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Review update failed",
			applog.FieldOperation, applog.OpReview,
			applog.FieldBillID, id,
			applog.FieldError, err)
		http.Error(w, "review failed", http.StatusInternalServerError)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Bill reviewed",
		applog.FieldOperation, applog.OpReview,
		applog.FieldBillID, id,
		applog.FieldBillStatus, string(status))
	s.invalidateBills()
	http.Redirect(w, r, "/admin/bills", http.StatusSeeOther)
}

// render executes a template, falling back to a 500 when templates failed to
// parse at startup.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldOperation, applog.OpRender,
			"template", name,
			applog.FieldError, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
