package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/vacation-approval/internal/application"
	"github.com/example/vacation-approval/internal/leave"
)

type userService interface {
	CreateUser(ctx context.Context, params application.CreateUserParams) (application.User, error)
	UpdateUser(ctx context.Context, params application.UpdateUserParams) (application.User, error)
	DeleteUser(ctx context.Context, principal application.Principal, userID string) error
	ListUsers(ctx context.Context, principal application.Principal) ([]application.User, error)
	ResetPassword(ctx context.Context, principal application.Principal, userID string) error
}

// UserHandler serves user administration for team leaders.
type UserHandler struct {
	service   userService
	responder responder
	logger    *slog.Logger
}

func NewUserHandler(service userService, logger *slog.Logger) *UserHandler {
	base := defaultLogger(logger)
	return &UserHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *UserHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "UserHandler", operation, attrs...)
}

func (h *UserHandler) List(c *gin.Context) {
	p, ok := principal(c, h.responder)
	if !ok {
		return
	}
	users, err := h.service.ListUsers(c.Request.Context(), p)
	if err != nil {
		h.responder.fail(c, err)
		return
	}
	out := make([]userDTO, len(users))
	for i, u := range users {
		out[i] = toUserDTO(u)
	}
	h.responder.success(c, http.StatusOK, "", out)
}

func (h *UserHandler) Create(c *gin.Context) {
	p, ok := principal(c, h.responder)
	if !ok {
		return
	}
	var req userRequest
	if err := bindJSON(c, &req); err != nil {
		h.responder.fail(c, err)
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), application.CreateUserParams{
		Principal: p,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.fail(c, err)
		return
	}
	h.log(c.Request.Context(), "Create", "user_id", user.ID).DebugContext(c.Request.Context(), "user created")
	h.responder.success(c, http.StatusCreated, "user created", toUserDTO(user))
}

func (h *UserHandler) Update(c *gin.Context) {
	p, ok := principal(c, h.responder)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req userRequest
	if err := bindJSON(c, &req); err != nil {
		h.responder.fail(c, err)
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), application.UpdateUserParams{
		Principal: p,
		UserID:    id,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.fail(c, err)
		return
	}
	h.responder.success(c, http.StatusOK, "user updated", toUserDTO(user))
}

func (h *UserHandler) Delete(c *gin.Context) {
	p, ok := principal(c, h.responder)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteUser(c.Request.Context(), p, id); err != nil {
		h.responder.fail(c, err)
		return
	}
	h.responder.success(c, http.StatusOK, "user deleted", nil)
}

// ResetPassword restores the temporary password for a user.
func (h *UserHandler) ResetPassword(c *gin.Context) {
	p, ok := principal(c, h.responder)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.service.ResetPassword(c.Request.Context(), p, id); err != nil {
		h.responder.fail(c, err)
		return
	}
	h.responder.success(c, http.StatusOK, "password reset to the temporary password", nil)
}

func (h *UserHandler) pathID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		h.responder.fail(c, errMissingID)
		return "", false
	}
	return id, true
}

type userRequest struct {
	EmployeeNumber string   `json:"employee_number" binding:"required,max=32"`
	Username       string   `json:"username" binding:"required,max=64"`
	HireDate       string   `json:"hire_date" binding:"required,datetime=2006-01-02"`
	Part           string   `json:"part" binding:"required,max=64"`
	Roles          []string `json:"roles" binding:"dive,oneof=team_leader part_leader member"`
}

func (r userRequest) toInput() application.UserInput {
	return application.UserInput{
		EmployeeNumber: r.EmployeeNumber,
		Username:       r.Username,
		HireDate:       r.HireDate,
		Part:           r.Part,
		Roles:          strings.Join(r.Roles, ","),
	}
}

type userDTO struct {
	ID             string   `json:"id"`
	EmployeeNumber string   `json:"employee_number"`
	Username       string   `json:"username"`
	HireDate       string   `json:"hire_date"`
	Part           string   `json:"part"`
	Roles          []string `json:"roles"`
	TempPassword   bool     `json:"temp_password"`
	CreatedAt      string   `json:"created_at"`
}

func toUserDTO(user application.User) userDTO {
	roles := user.Roles.Slice()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return userDTO{
		ID:             user.ID,
		EmployeeNumber: user.EmployeeNumber,
		Username:       user.Username,
		HireDate:       leave.FormatDate(user.HireDate),
		Part:           user.Part,
		Roles:          names,
		TempPassword:   user.TempPassword,
		CreatedAt:      user.CreatedAt.UTC().Format(time.RFC3339),
	}
}
