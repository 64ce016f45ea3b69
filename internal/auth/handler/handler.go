// Package handler exposes the auth module's HTTP endpoints.
package handler

import (
	"net/http"

	"courseportal_backend/internal/auth/repository"
	"courseportal_backend/internal/auth/service"
	"courseportal_backend/internal/auth/transport"
	"courseportal_backend/platform/apperr"
	"courseportal_backend/platform/httpkit"
	"courseportal_backend/platform/pagination"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxAvatarMemory bounds the in-memory portion of a multipart avatar upload.
const maxAvatarMemory = 8 << 20

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(c *gin.Context) {
	req := httpkit.BodyValue[transport.RegisterRequest](c)

	result, err := h.svc.Register(c.Request.Context(), req.Email, req.Username, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, "User registered successfully", transport.RegisterResponse{
		User:           toUserResponse(result.User),
		EmailDelivered: result.EmailDelivered,
	})
}

func (h *Handler) VerifyEmail(c *gin.Context) {
	req := httpkit.BodyValue[transport.VerifyEmailRequest](c)

	if httpkit.HandleError(c, h.svc.VerifyEmail(c.Request.Context(), req.Token)) {
		return
	}

	httpkit.OK(c, "Email verified successfully", nil)
}

func (h *Handler) Login(c *gin.Context) {
	req := httpkit.BodyValue[transport.LoginRequest](c)

	pair, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, "Logged in successfully", transport.TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *Handler) Refresh(c *gin.Context) {
	req := httpkit.BodyValue[transport.RefreshRequest](c)

	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, "Token refreshed successfully", transport.TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *Handler) GetProfile(c *gin.Context) {
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}

	data, err := h.svc.GetProfile(c.Request.Context(), identity.ID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, "Profile retrieved successfully", toProfileResponse(data))
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}
	req := httpkit.BodyValue[transport.UpdateProfileRequest](c)

	data, err := h.svc.UpdateProfile(c.Request.Context(), identity.ID, req.FirstName, req.LastName, req.Bio)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, "Profile updated successfully", toProfileResponse(data))
}

func (h *Handler) ChangePassword(c *gin.Context) {
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}
	req := httpkit.BodyValue[transport.ChangePasswordRequest](c)

	if httpkit.HandleError(c, h.svc.ChangePassword(c.Request.Context(), identity.ID, req.OldPassword, req.NewPassword)) {
		return
	}

	httpkit.OK(c, "Password changed successfully", nil)
}

// UploadAvatar accepts a multipart form with an "avatar" file field. The
// multipart parse replaces the JSON body validator on this route.
func (h *Handler) UploadAvatar(c *gin.Context) {
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(maxAvatarMemory); err != nil {
		httpkit.HandleError(c, apperr.Validation("avatar file is required"))
		return
	}
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		httpkit.HandleError(c, apperr.Validation("avatar file is required"))
		return
	}
	defer file.Close()

	url, err := h.svc.UploadAvatar(c.Request.Context(), identity.ID,
		header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, "Avatar uploaded successfully", transport.AvatarResponse{AvatarURL: url})
}

func (h *Handler) ListUsers(c *gin.Context) {
	params := httpkit.QueryValue[pagination.Params](c)

	users, meta, err := h.svc.ListUsers(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, toUserResponse(user))
	}
	httpkit.OKPaginated(c, "Users retrieved successfully", out, meta)
}

func (h *Handler) SetRole(c *gin.Context) {
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}
	params := httpkit.ParamsValue[transport.UserIDParams](c)
	req := httpkit.BodyValue[transport.SetRoleRequest](c)

	userID, err := uuid.Parse(params.ID)
	if err != nil {
		httpkit.Fail(c, http.StatusUnprocessableEntity, "Param validation error!")
		return
	}

	user, err := h.svc.SetRole(c.Request.Context(), identity.ID, userID, req.Role)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, "Role updated successfully", toUserResponse(user))
}

func toUserResponse(user repository.User) transport.UserResponse {
	return transport.UserResponse{
		ID:            user.ID.String(),
		Email:         user.Email,
		Username:      user.Username,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}

func toProfileResponse(data service.ProfileData) transport.ProfileResponse {
	return transport.ProfileResponse{
		UserID:    data.User.ID.String(),
		Email:     data.User.Email,
		Username:  data.User.Username,
		Role:      data.User.Role,
		FirstName: data.Profile.FirstName,
		LastName:  data.Profile.LastName,
		Bio:       data.Profile.Bio,
		AvatarURL: data.AvatarURL,
		UpdatedAt: data.Profile.UpdatedAt,
	}
}
