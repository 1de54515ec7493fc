package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-matchmaker/internal/application/auth"
	"github.com/go-matchmaker/internal/application/questionnaire"
	"github.com/go-matchmaker/internal/application/session"
	"github.com/go-matchmaker/internal/domain"
	"github.com/go-matchmaker/internal/logger"
	"github.com/go-matchmaker/internal/transport/http/view"
)

// User-facing notices.
const (
	msgDuplicateEmail  = "Email already registered. Please log in."
	msgInvalidAge      = "Please enter a valid age."
	msgUnknownEmail    = "No account found for that email. Please register."
	msgDeliveryFailed  = "We could not send your code. Please try again."
	msgDeliveryWarning = "Your account was created, but we could not email your code. Request a new one from the login page."
	msgInvalidCode     = "Invalid OTP. Please try again."
	msgBadVerification = "Invalid verification request."
	msgVerifyFailed    = "User verification failed."
	msgLoggedIn        = "Logged in successfully!"
	msgQuestionnaireOK = "Questionnaire submitted successfully. You can now be matched!"
	msgAlreadyAnswered = "Questionnaire already submitted. Please log in."
	msgLoginRequired   = "Please log in to access the dashboard."
	msgLoggedOut       = "Logged out successfully!"
	msgSomethingWrong  = "Something went wrong. Please try again."
)

// OnboardingHandler serves the registration, login, verification,
// questionnaire and dashboard pages.
type OnboardingHandler struct {
	auth          auth.Service
	questionnaire questionnaire.Service
	sessions      session.Service
	views         *view.Renderer
}

func NewOnboardingHandler(authSvc auth.Service, questionnaireSvc questionnaire.Service, sessionSvc session.Service, views *view.Renderer) *OnboardingHandler {
	return &OnboardingHandler{
		auth:          authSvc,
		questionnaire: questionnaireSvc,
		sessions:      sessionSvc,
		views:         views,
	}
}

func (h *OnboardingHandler) Index(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.views, view.Index, view.Data{})
}

func (h *OnboardingHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirect(w, r, "/", msgSomethingWrong)
		return
	}
	age, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("age")))
	if err != nil {
		redirect(w, r, "/", msgInvalidAge)
		return
	}

	pending, err := h.auth.Register(r.Context(), domain.RegisterRequest{
		Name:        r.PostForm.Get("name"),
		Age:         age,
		CollegeYear: r.PostForm.Get("college_year"),
		Email:       r.PostForm.Get("email"),
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrDuplicateEmail):
		redirect(w, r, "/login", msgDuplicateEmail)
		return
	case errors.Is(err, domain.ErrBadRequest):
		redirect(w, r, "/", capitalize(strings.TrimSuffix(err.Error(), ": "+domain.ErrBadRequest.Error())))
		return
	default:
		h.fail(w, r, "/", err)
		return
	}

	data := view.Data{UserID: pending.UserID, Mode: pending.Mode}
	if pending.DeliveryErr != nil {
		data.Notice = msgDeliveryWarning
	}
	renderPage(w, r, h.views, view.Verify, data)
}

func (h *OnboardingHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.views, view.Login, view.Data{})
}

func (h *OnboardingHandler) Login(w http.ResponseWriter, r *http.Request) {
	pending, err := h.auth.Login(r.Context(), r.PostFormValue("email"))
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUnknownEmail):
		redirect(w, r, "/login", msgUnknownEmail)
		return
	case errors.Is(err, domain.ErrDeliveryFailure):
		redirect(w, r, "/login", msgDeliveryFailed)
		return
	case errors.Is(err, domain.ErrBadRequest):
		redirect(w, r, "/login", msgUnknownEmail)
		return
	default:
		h.fail(w, r, "/login", err)
		return
	}
	renderPage(w, r, h.views, view.Verify, view.Data{UserID: pending.UserID, Mode: pending.Mode})
}

func (h *OnboardingHandler) Verify(w http.ResponseWriter, r *http.Request) {
	req := auth.VerifyRequest{
		UserID: r.PostFormValue("user_id"),
		Code:   r.PostFormValue("otp"),
		Mode:   r.PostFormValue("mode"),
	}
	// a failed login code sends the user back to the email form
	retry := "/"
	if req.Mode == string(domain.ModeLogin) {
		retry = "/login"
	}

	sc := session.FromContext(r.Context())
	step, err := h.auth.Verify(r.Context(), sc, req)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidCode), errors.Is(err, domain.ErrUserNotFound):
		redirect(w, r, retry, msgInvalidCode)
		return
	case errors.Is(err, domain.ErrBadRequest):
		redirect(w, r, "/", msgBadVerification)
		return
	default:
		h.fail(w, r, retry, err)
		return
	}

	if step == domain.StepDashboard {
		redirect(w, r, "/dashboard", msgLoggedIn)
		return
	}
	renderPage(w, r, h.views, view.Questionnaire, view.Data{UserID: req.UserID})
}

func (h *OnboardingHandler) SubmitQuestionnaire(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirect(w, r, "/", msgSomethingWrong)
		return
	}
	userID := r.PostForm.Get(questionnaire.IdentifierField)
	answers := make(map[string]string, len(r.PostForm))
	for k, v := range r.PostForm {
		if k == questionnaire.IdentifierField || len(v) == 0 {
			continue
		}
		answers[k] = v[0]
	}

	sc := session.FromContext(r.Context())
	err := h.questionnaire.Submit(r.Context(), sc, userID, answers)
	switch {
	case err == nil:
		redirect(w, r, "/dashboard", msgQuestionnaireOK)
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrNotVerified):
		redirect(w, r, "/", msgVerifyFailed)
	case errors.Is(err, domain.ErrAlreadyOnboarded):
		redirect(w, r, "/login", msgAlreadyAnswered)
	default:
		h.fail(w, r, "/", err)
	}
}

func (h *OnboardingHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	u, err := h.sessions.Current(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			redirect(w, r, "/login", msgLoginRequired)
			return
		}
		h.fail(w, r, "/login", err)
		return
	}

	answers, err := u.Answers()
	if err != nil {
		logger.FromRequest(r).Warn().Err(err).Str("user_id", u.UserID).Msg("stored questionnaire is not valid JSON")
	}
	renderPage(w, r, h.views, view.Dashboard, view.Data{User: u, Answers: view.SortedAnswers(answers)})
}

func (h *OnboardingHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(r.Context(), session.FromContext(r.Context()))
	redirect(w, r, "/login", msgLoggedOut)
}

// fail logs an unexpected error and degrades to a redirect with a notice.
func (h *OnboardingHandler) fail(w http.ResponseWriter, r *http.Request, path string, err error) {
	logger.FromRequest(r).Err(err).Str("path", r.URL.Path).Msg("request failed")
	redirect(w, r, path, msgSomethingWrong)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
