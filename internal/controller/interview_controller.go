// FILE: internal/controller/interview_controller.go
// Controller for interview session endpoints
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"ai-interviewer-be/internal/dto"
	"ai-interviewer-be/internal/pkg/serverutils"
	"ai-interviewer-be/internal/service"
	"ai-interviewer-be/internal/websocket"
)

type InterviewController interface {
	RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler)
}

type interviewController struct {
	interviewService service.IInterviewService
	hub              *websocket.Hub
	validate         *validator.Validate
}

func NewInterviewController(interviewService service.IInterviewService, hub *websocket.Hub) InterviewController {
	return &interviewController{
		interviewService: interviewService,
		hub:              hub,
		validate:         validator.New(),
	}
}

func (c *interviewController) RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler) {
	interviews := api.Group("/interviews", jwtMiddleware)
	interviews.Post("/", c.CreateInterview)
	interviews.Post("/:id/live-update", c.ProcessLiveUpdate)
	interviews.Post("/:id/end", c.EndInterview)
	interviews.Get("/:id", c.GetInterview)

	// Websocket upgrades cannot carry the Authorization header from
	// browsers, so the instruction channel sits outside the jwt group.
	ws := api.Group("/interviews/:id/ws")
	ws.Use(upgradeRequired)
	ws.Get("/", fiberws.New(c.StreamInstructions))
}

func upgradeRequired(ctx *fiber.Ctx) error {
	if fiberws.IsWebSocketUpgrade(ctx) {
		return ctx.Next()
	}
	return fiber.ErrUpgradeRequired
}

// CreateInterview generates a question plan and opens a live session
// @Summary Create interview session
// @Description Generates an interview plan for the topic and registers a live coordinator
// @Tags Interviews
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateInterviewRequest true "Interview setup"
// @Success 200 {object} dto.CreateInterviewResponse
// @Router /api/interviews [post]
func (c *interviewController) CreateInterview(ctx *fiber.Ctx) error {
	var request dto.CreateInterviewRequest
	if err := ctx.BodyParser(&request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := c.validate.Struct(&request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	response, err := c.interviewService.CreateInterview(ctx.Context(), &request)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Interview created", response))
}

// ProcessLiveUpdate runs one orchestration cycle with new transcript
// @Summary Process live transcript update
// @Description Feeds new utterances into the session and returns the current decision and instructions
// @Tags Interviews
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.LiveUpdateRequest true "New utterances and elapsed time"
// @Success 200 {object} dto.LiveUpdateResponse
// @Router /api/interviews/{id}/live-update [post]
func (c *interviewController) ProcessLiveUpdate(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session ID"))
	}

	var request dto.LiveUpdateRequest
	if err := ctx.BodyParser(&request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := c.validate.Struct(&request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	response, err := c.interviewService.ProcessLiveUpdate(ctx.Context(), sessionId, &request)
	if err != nil {
		if strings.Contains(err.Error(), "not live") {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Cycle processed", response))
}

// EndInterview completes a live session and persists its final state
// @Summary End interview session
// @Description Freezes the session, persists the final snapshot, and releases live resources
// @Tags Interviews
// @Security BearerAuth
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.EndInterviewResponse
// @Router /api/interviews/{id}/end [post]
func (c *interviewController) EndInterview(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session ID"))
	}

	response, err := c.interviewService.EndInterview(ctx.Context(), sessionId)
	if err != nil {
		if strings.Contains(err.Error(), "not live") {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Interview completed", response))
}

// GetInterview returns the live or persisted session state
// @Summary Get interview session
// @Description Returns the live view for ongoing sessions or the stored snapshot for completed ones
// @Tags Interviews
// @Security BearerAuth
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.InterviewSessionResponse
// @Router /api/interviews/{id} [get]
func (c *interviewController) GetInterview(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session ID"))
	}

	response, err := c.interviewService.GetInterview(ctx.Context(), sessionId)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Interview retrieved", response))
}

// StreamInstructions attaches a driver connection to the instruction feed
// @Summary Stream interviewer instructions
// @Description Websocket channel delivering per-cycle interviewer instructions for a session
// @Tags Interviews
// @Param id path string true "Session ID"
// @Router /api/interviews/{id}/ws [get]
func (c *interviewController) StreamInstructions(conn *fiberws.Conn) {
	sessionId, err := uuid.Parse(conn.Params("id"))
	if err != nil {
		conn.Close()
		return
	}
	websocket.ServeWs(c.hub, conn, sessionId)
}
