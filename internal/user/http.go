package user

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/util"
)

type HTTP struct {
	Svc      *Service
	Producer events.Publisher
}

// Me returns the authenticated user's own profile.
func (h *HTTP) Me(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	u, err := h.Svc.Get(c.Request().Context(), userID)
	if err != nil {
		return h.mapError(c, "user.me", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *HTTP) GetUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	u, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.mapError(c, "user.get", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *HTTP) ListUsers(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, users, err := h.Svc.List(c.Request().Context(), offset, limit)
	if err != nil {
		return h.mapError(c, "user.list", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"users": users,
		"page":  page,
		"size":  limit,
		"total": total,
	})
}

// UpdateUser handles both self-service edits and admin edits. Only admins
// may change roles or touch other accounts.
func (h *HTTP) UpdateUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	isAdmin := middleware.Role(c) == models.RoleAdmin
	if id != userID && !isAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "not your account")
	}

	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if in.Role != nil && !isAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "admin access required")
	}

	u, err := h.Svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return h.mapError(c, "user.update", err)
	}

	h.publish(c, map[string]any{"type": "user_updated", "user_id": u.ID})
	return c.JSON(http.StatusOK, u)
}

func (h *HTTP) ChangePassword(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.ChangePassword(c.Request().Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return h.mapError(c, "user.change_password", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "password updated"})
}

func (h *HTTP) UploadAvatar(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "avatar file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read avatar file")
	}
	defer file.Close()

	u, err := h.Svc.UploadAvatar(c.Request().Context(), userID, Avatar{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		return h.mapError(c, "user.upload_avatar", err)
	}

	return c.JSON(http.StatusOK, map[string]string{"avatar_url": u.AvatarURL})
}

func (h *HTTP) DeleteUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return h.mapError(c, "user.delete", err)
	}

	h.publish(c, map[string]any{"type": "user_deleted", "user_id": id})
	return c.NoContent(http.StatusNoContent)
}

func (h *HTTP) mapError(c echo.Context, op string, err error) error {
	l := logging.FromContext(c.Request().Context()).With("handler", op)
	switch {
	case errors.Is(err, ErrValidation):
		l.Warn(op+"_failed", "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		l.Warn(op+"_failed", "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	case errors.Is(err, ErrConflict):
		l.Warn(op+"_failed", "status", 409, "error", err)
		return echo.NewHTTPError(http.StatusConflict, "email already in use")
	default:
		l.Error(op+"_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (h *HTTP) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx := c.Request().Context()
	if err := h.Producer.PublishEvent(ctx, events.TopicUserEvents, fmt.Sprint(event["user_id"]), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return uint(id), nil
}
