// internal/controller/auto_reply_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/smartleadhq/smartlead-backend/internal/repository"
)

type AutoReplyController struct {
	ReplyRepo repository.AutoReplyRepositoryInterface
}

// ListPending returns every unsent scheduled reply so the settings surface
// can show what the dispatcher will pick up.
func (c *AutoReplyController) ListPending(w http.ResponseWriter, r *http.Request) {
	replies, err := c.ReplyRepo.ListPending()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"data": replies})
}
