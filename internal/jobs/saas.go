package jobs

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/marketdesk/support-chat/internal/notify"
	"github.com/marketdesk/support-chat/internal/repositories"
)

// maxMilestoneMonths bounds how far past an admin's creation date the
// anniversary scan looks.
const maxMilestoneMonths = 60

// SaasJob finds subscribed admins whose monthly billing anniversary falls on
// today and notifies every super-admin destination once per such admin.
type SaasJob struct {
	primary     repositories.PrimaryUserRepository
	prefs       repositories.NotificationPrefRepository
	sink        notify.Sink
	cache       *gocache.Cache
	log         *zap.SugaredLogger
	adminRoleID primitive.ObjectID
}

func NewSaasJob(primary repositories.PrimaryUserRepository, prefs repositories.NotificationPrefRepository, sink notify.Sink, adminRoleID primitive.ObjectID, log *zap.SugaredLogger) *SaasJob {
	return &SaasJob{
		primary:     primary,
		prefs:       prefs,
		sink:        sink,
		cache:       newPrefsCache(),
		log:         log,
		adminRoleID: adminRoleID,
	}
}

// Run performs one anniversary sweep and returns the number of notifications
// sent. Failures degrade to zero sent.
func (j *SaasJob) Run(ctx context.Context) int {
	destinations := chatDestinations(ctx, j.prefs, j.cache, superAdminRole)
	if len(destinations) == 0 {
		j.log.Debugw("no super-admin destinations for saas notifications")
		return 0
	}

	admins, err := j.primary.FindSaasAdmins(ctx, j.adminRoleID)
	if err != nil {
		j.log.Warnw("saas admin lookup failed", "err", err)
		return 0
	}

	today := time.Now().UTC()
	total := 0
	for _, admin := range admins {
		month := milestoneMonth(admin.CreatedAt, today)
		if month == 0 {
			continue
		}
		sent := j.sendMilestone(destinations, admin.UserName, month, admin.SaasAmount)
		total += sent
		j.log.Infow("saas milestone notification", "user_name", admin.UserName, "months", month, "amount", admin.SaasAmount)
	}
	return total
}

func (j *SaasJob) sendMilestone(destinations []int64, userName string, month int, amount float64) int {
	monthText := fmt.Sprintf("%d months complete", month)
	if month == 1 {
		monthText = "1 month complete"
	}
	name := userName
	if name == "" {
		name = "—"
	}
	message := fmt.Sprintf(
		"📋 <b>SaaS milestone</b>\n👤 <b>userName:</b> %s\n📅 <b>%s</b>\n💰 <b>amount:</b> %s",
		html.EscapeString(name), monthText, html.EscapeString(formatAmount(amount)),
	)

	sent := 0
	for _, dest := range destinations {
		if j.sink.Send(dest, message) {
			sent++
		}
	}
	return sent
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// milestoneMonth returns n when today is the n-th monthly anniversary of
// created (calendar-clamped), or 0 when today is no anniversary.
func milestoneMonth(created, today time.Time) int {
	cy, cm, cd := today.UTC().Date()
	for n := 1; n <= maxMilestoneMonths; n++ {
		ay, am, ad := addMonths(created.UTC(), n).Date()
		if ay > cy || (ay == cy && am > cm) || (ay == cy && am == cm && ad > cd) {
			return 0
		}
		if ay == cy && am == cm && ad == cd {
			return n
		}
	}
	return 0
}

// addMonths advances by whole calendar months, clamping to the last day of
// shorter months (Jan 31 + 1 month = Feb 28/29, not Mar 2).
func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	if lastDay := first.AddDate(0, 1, -1).Day(); d > lastDay {
		d = lastDay
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}
