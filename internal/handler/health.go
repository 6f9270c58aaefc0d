package handler

import (
	"net/http"

	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/utils"
)

func Health(w http.ResponseWriter, r *http.Request) {
	utils.SuccessResponse(w, http.StatusOK, map[string]string{"status": "ok"}, "")
}
