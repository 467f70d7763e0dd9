package handler

import (
	"net/http"

	"go-parish-admin/internal/middleware"
	"go-parish-admin/internal/model"
)

func actorFromRequest(r *http.Request) model.Actor {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return model.Actor{}
	}
	return claims.Actor()
}
