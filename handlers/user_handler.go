package handlers

import (
	"bufio"
	"errors"
	"net/http"

	"github.com/Dosada05/prediction-league/middleware"
	"github.com/Dosada05/prediction-league/services"
)

const (
	maxAvatarSize  = 5 << 20 // 5MB
	avatarFormKey  = "avatar"
	sniffBytesSize = 512
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetMe godoc
// @Summary      Current user's profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /users/me [get]
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"user": user})
}

// UploadAvatar godoc
// @Summary      Upload or replace the avatar
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "JPEG, PNG or WebP image up to 5MB"
// @Success      200     {object}  map[string]interface{}
// @Failure      415     {object}  map[string]interface{}
// @Failure      503     {object}  map[string]interface{}
// @Router       /users/me/avatar [put]
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize+1024)
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			errorResponse(w, r, http.StatusRequestEntityTooLarge, "avatar must not be larger than 5MB")
			return
		}
		badRequestResponse(w, r, errors.New("request must be multipart/form-data"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile(avatarFormKey)
	if err != nil {
		badRequestResponse(w, r, errors.New("avatar file is required"))
		return
	}
	defer file.Close()

	// Тип определяем по содержимому, заголовку клиента не доверяем
	buffered := bufio.NewReaderSize(file, sniffBytesSize)
	head, _ := buffered.Peek(sniffBytesSize)
	contentType := http.DetectContentType(head)

	user, err := h.userService.UploadAvatar(r.Context(), userID, contentType, buffered)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"user": user})
}
