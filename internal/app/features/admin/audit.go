// internal/app/features/admin/audit.go
package admin

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dalemusser/freightdesk/internal/app/store/audit"
	"github.com/dalemusser/freightdesk/internal/app/system/normalize"
	"github.com/dalemusser/freightdesk/internal/app/system/paging"
	"github.com/dalemusser/freightdesk/internal/app/system/timeouts"
	"github.com/dalemusser/freightdesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type auditData struct {
	viewdata.BaseVM
	Category   string
	EventType  string
	Categories []string
	EventTypes []string
	Rows       []auditRow
	Total      int64
	Page       int
	PrevURL    string
	NextURL    string
}

type auditRow struct {
	When      string
	Category  string
	EventType string
	User      string
	Actor     string
	Subject   string
	IP        string
	Success   bool
	Reason    string
}

var auditCategories = []string{audit.CategoryAuth, audit.CategoryAdmin, audit.CategoryOperations}

// GET /admin/audit
func (h *Handler) ServeAudit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data, err := h.auditPage(ctx, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error listing audit events", err, "Unable to load the audit log.", "/admin")
		return
	}
	templates.Render(w, r, "admin_audit", data)
}

// auditPage loads one page of events, newest first. The order rules out
// the keyset pager used by the other lists, so pages go by offset.
func (h *Handler) auditPage(ctx context.Context, r *http.Request) (auditData, error) {
	category := normalize.Filter(query.Get(r, "category"))
	if _, ok := audit.EventTypes[category]; !ok {
		category = ""
	}
	eventType := normalize.Filter(query.Get(r, "event_type"))
	if !knownEventType(category, eventType) {
		eventType = ""
	}
	page, _ := strconv.Atoi(query.Get(r, "page"))
	if page < 1 {
		page = 1
	}
	size := paging.ParseSize(r)

	filter := audit.QueryFilter{
		Category:  category,
		EventType: eventType,
		Limit:     int64(size),
		Offset:    int64((page - 1) * size),
	}

	total, err := h.Events.Count(ctx, filter)
	if err != nil {
		return auditData{}, err
	}
	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		return auditData{}, err
	}

	names := h.userNames(ctx, events)
	rows := make([]auditRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, auditRow{
			When:      e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			Category:  e.Category,
			EventType: e.EventType,
			User:      nameOf(names, e.UserID),
			Actor:     nameOf(names, e.ActorID),
			Subject:   e.Subject,
			IP:        e.IP,
			Success:   e.Success,
			Reason:    e.FailureReason,
		})
	}

	var types []string
	if category != "" {
		types = audit.EventTypes[category]
	} else {
		for _, c := range auditCategories {
			types = append(types, audit.EventTypes[c]...)
		}
	}

	data := auditData{
		BaseVM:     viewdata.NewBaseVM(r, "Audit log", "/admin"),
		Category:   category,
		EventType:  eventType,
		Categories: auditCategories,
		EventTypes: types,
		Rows:       rows,
		Total:      total,
		Page:       page,
	}
	link := func(p int) string {
		v := url.Values{"page": {strconv.Itoa(p)}, "size": {strconv.Itoa(size)}}
		if category != "" {
			v.Set("category", category)
		}
		if eventType != "" {
			v.Set("event_type", eventType)
		}
		return r.URL.Path + "?" + v.Encode()
	}
	if page > 1 {
		data.PrevURL = link(page - 1)
	}
	if int64(page*size) < total {
		data.NextURL = link(page + 1)
	}
	return data, nil
}

func knownEventType(category, eventType string) bool {
	for c, types := range audit.EventTypes {
		if category != "" && c != category {
			continue
		}
		for _, t := range types {
			if t == eventType {
				return true
			}
		}
	}
	return false
}

// userNames resolves the user and actor ids on a page of events. A lookup
// failure leaves the ids to be shown as-is.
func (h *Handler) userNames(ctx context.Context, events []audit.Event) map[primitive.ObjectID]string {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, e := range events {
		for _, id := range []*primitive.ObjectID{e.UserID, e.ActorID} {
			if id != nil && !seen[*id] {
				seen[*id] = true
				ids = append(ids, *id)
			}
		}
	}
	names := map[primitive.ObjectID]string{}
	if len(ids) == 0 {
		return names
	}
	users, err := h.Users.GetByIDs(ctx, ids)
	if err != nil {
		h.Log.Warn("audit log: resolve user names", zap.Error(err))
		return names
	}
	for _, u := range users {
		names[u.ID] = u.FullName
	}
	return names
}

func nameOf(names map[primitive.ObjectID]string, id *primitive.ObjectID) string {
	if id == nil {
		return ""
	}
	if n, ok := names[*id]; ok {
		return n
	}
	return id.Hex()
}
