package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wordlab/study-api/internal/core/domain"
	"github.com/wordlab/study-api/internal/core/ports"
)

type SessionHandler struct {
	sessions ports.SessionService
}

func NewSessionHandler(sessions ports.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Start opens a participant session on an experiment.
//
// @Summary      Start session
// @Tags         sessions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Experiment ID"
// @Param        body  body      startSessionRequest  true  "Condition: treatment or control"
// @Success      201   {object}  startSessionResponse
// @Failure      400   {object}  MessageResponse
// @Failure      404   {object}  MessageResponse
// @Router       /api/experiments/{id}/sessions [post]
func (h *SessionHandler) Start(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req startSessionRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	started, err := h.sessions.Start(c.Request().Context(), caller, c.Param("id"), domain.Condition(req.Condition))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, startSessionResponse{Session: started.Session, Experiment: started.Experiment})
}

// Get returns the caller's session.
//
// @Summary      Get session
// @Tags         sessions
// @Security     BearerAuth
// @Produce      json
// @Param        sessionId  path      string  true  "Session ID"
// @Success      200        {object}  domain.StudySession
// @Failure      403        {object}  MessageResponse
// @Failure      404        {object}  MessageResponse
// @Router       /api/sessions/{sessionId} [get]
func (h *SessionHandler) Get(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	sess, err := h.sessions.Get(c.Request().Context(), caller, c.Param("sessionId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess)
}

// Advance moves the session to the next stage.
//
// @Summary      Advance session
// @Description  Leaving the consent stage requires consent=true.
// @Tags         sessions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        sessionId  path      string                 true   "Session ID"
// @Param        body       body      advanceSessionRequest  false  "Consent"
// @Success      200        {object}  domain.StudySession
// @Failure      400        {object}  MessageResponse
// @Failure      403        {object}  MessageResponse
// @Failure      404        {object}  MessageResponse
// @Router       /api/sessions/{sessionId}/advance [post]
func (h *SessionHandler) Advance(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req advanceSessionRequest
	if c.Request().ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			return err
		}
	}

	sess, err := h.sessions.Advance(c.Request().Context(), caller, c.Param("sessionId"), req.Consent)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess)
}
