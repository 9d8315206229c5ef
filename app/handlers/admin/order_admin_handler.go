package admin

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Rakhulsr/kidstore/app/helpers"
	"github.com/Rakhulsr/kidstore/app/models"
	"github.com/Rakhulsr/kidstore/app/repositories"
	"github.com/Rakhulsr/kidstore/app/utils/apperr"
)

const (
	exportDateLayout = "2006-01-02"
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// exportFilter reads ?status=&from=&to= with dates as YYYY-MM-DD. The to
// date is inclusive.
func exportFilter(r *http.Request) (repositories.OrderFilter, error) {
	q := r.URL.Query()
	filter := repositories.OrderFilter{Status: models.OrderStatus(q.Get("status"))}
	if filter.Status != "" && !filter.Status.Valid() {
		return filter, apperr.Validation("unknown order status")
	}

	if raw := q.Get("from"); raw != "" {
		from, err := time.Parse(exportDateLayout, raw)
		if err != nil {
			return filter, apperr.Validation("from must be a YYYY-MM-DD date")
		}
		filter.From = from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := time.Parse(exportDateLayout, raw)
		if err != nil {
			return filter, apperr.Validation("to must be a YYYY-MM-DD date")
		}
		filter.To = to.AddDate(0, 0, 1)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return filter, apperr.Validation("from must not be after to")
	}
	return filter, nil
}

// ExportOrders streams the filtered orders as an xlsx download. The workbook
// is built in memory first so a failure still produces a JSON error.
func (h *AdminHandler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	filter, err := exportFilter(r)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	var buf bytes.Buffer
	if err := h.dashboard.ExportOrders(r.Context(), filter, &buf); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.Warnf("ExportOrders: client went away: %v", err)
	}
}
