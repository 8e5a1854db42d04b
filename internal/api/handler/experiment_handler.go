package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wordlab/study-api/internal/core/ports"
)

type ExperimentHandler struct {
	experiments ports.ExperimentService
	content     ports.ContentService
}

func NewExperimentHandler(experiments ports.ExperimentService, content ports.ContentService) *ExperimentHandler {
	return &ExperimentHandler{experiments: experiments, content: content}
}

// Create registers a draft experiment owned by the calling teacher.
//
// @Summary      Create experiment
// @Tags         experiments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      createExperimentRequest  true  "Experiment"
// @Success      201   {object}  domain.Experiment
// @Failure      400   {object}  MessageResponse
// @Failure      401   {object}  MessageResponse
// @Failure      403   {object}  MessageResponse
// @Router       /api/experiments [post]
func (h *ExperimentHandler) Create(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req createExperimentRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	exp, err := h.experiments.Create(c.Request().Context(), caller, toCreateExperimentInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, exp)
}

// ListOwned returns the caller's experiments, newest first.
//
// @Summary      List own experiments
// @Tags         experiments
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   domain.Experiment
// @Failure      401  {object}  MessageResponse
// @Failure      403  {object}  MessageResponse
// @Router       /api/experiments [get]
func (h *ExperimentHandler) ListOwned(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	list, err := h.experiments.ListOwned(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// ListAvailable returns active experiments in their participant view.
//
// @Summary      List available experiments
// @Tags         experiments
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   domain.PublicExperiment
// @Failure      401  {object}  MessageResponse
// @Failure      403  {object}  MessageResponse
// @Router       /api/experiments/available [get]
func (h *ExperimentHandler) ListAvailable(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	list, err := h.experiments.ListAvailable(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Get returns one experiment in its participant view.
//
// @Summary      Get experiment
// @Tags         experiments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Experiment ID"
// @Success      200  {object}  domain.PublicExperiment
// @Failure      401  {object}  MessageResponse
// @Failure      404  {object}  MessageResponse
// @Router       /api/experiments/{id} [get]
func (h *ExperimentHandler) Get(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	exp, err := h.experiments.GetPublic(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, exp)
}

// Update applies a partial edit.
//
// @Summary      Update experiment
// @Description  Changing storyTheme or the target word texts clears generated content.
// @Tags         experiments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "Experiment ID"
// @Param        body  body      updateExperimentRequest  true  "Fields to change"
// @Success      200   {object}  domain.Experiment
// @Failure      400   {object}  MessageResponse
// @Failure      403   {object}  MessageResponse
// @Failure      404   {object}  MessageResponse
// @Failure      409   {object}  MessageResponse
// @Router       /api/experiments/{id} [put]
func (h *ExperimentHandler) Update(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req updateExperimentRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	exp, err := h.experiments.Update(c.Request().Context(), caller, c.Param("id"), toUpdateExperimentInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, exp)
}

// Delete removes an experiment.
//
// @Summary      Delete experiment
// @Tags         experiments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Experiment ID"
// @Success      200  {object}  MessageResponse
// @Failure      403  {object}  MessageResponse
// @Failure      404  {object}  MessageResponse
// @Router       /api/experiments/{id} [delete]
func (h *ExperimentHandler) Delete(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.experiments.Delete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Experiment deleted successfully."})
}

// GenerateContent writes a new story and narration onto the experiment.
//
// @Summary      Generate story and audio
// @Tags         experiments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Experiment ID"
// @Success      200  {object}  generateContentResponse
// @Failure      400  {object}  MessageResponse
// @Failure      403  {object}  MessageResponse
// @Failure      404  {object}  MessageResponse
// @Failure      409  {object}  MessageResponse
// @Failure      500  {object}  MessageResponse
// @Router       /api/experiments/{id}/generate-content [post]
func (h *ExperimentHandler) GenerateContent(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	exp, err := h.content.GenerateContent(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, generateContentResponse{Message: "Content generated successfully!", Experiment: exp})
}
