package post

import (
	"errors"
	"net/http"

	"trendscribe/internal/handler/http/pathutil"
	"trendscribe/internal/handler/http/respond"
	"trendscribe/internal/repository"
)

var errPostNotFound = errors.New("post not found")

type GetHandler struct{ Repo repository.PostRepository }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	p, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if p == nil {
		respond.SafeError(w, http.StatusNotFound, errPostNotFound)
		return
	}

	respond.JSON(w, http.StatusOK, toDTO(p))
}
