package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vaartalab/newsroom-backend/internal/http/response"
	"github.com/vaartalab/newsroom-backend/internal/requestdata"
)

// actor pulls the authenticated caller off the request context. The auth
// middleware guarantees it on protected routes; the guard stays for the
// compiler-invisible case of a mis-registered route.
func actor(c *gin.Context) (requestdata.RequestData, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return requestdata.RequestData{}, false
	}
	return *rd, true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads limit/offset query params. Zero values let the
// service layer apply its own defaults and caps.
func pagination(c *gin.Context) (limit, offset int) {
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		offset = v
	}
	return limit, offset
}
