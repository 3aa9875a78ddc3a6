package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/outreach-engine/scheduler/internal/platform/crypto"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newID() string { return uuid.New().String() }

func hashPassword(pw string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), 12)
	if err != nil {
		log.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

func daysAgo(d int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -d)
}

func hoursFromNow(h int) time.Time {
	return time.Now().UTC().Add(time.Duration(h) * time.Hour)
}

func randBetween(min, max int) int {
	return min + rand.Intn(max-min+1)
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		log.Fatalf("marshal: %v", err)
	}
	return b
}

// ── main ─────────────────────────────────────────────────────────────────────

func main() {
	_ = godotenv.Load()

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_USER", "jobber"),
		envOr("DB_PASSWORD", "jobber"),
		envOr("DB_NAME", "jobber"),
		envOr("DB_SSL_MODE", "disable"),
	)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}
	fmt.Println("connected to database")

	box, err := crypto.NewCredentialBox([]byte(envOr("CREDENTIAL_ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef")[:32]))
	if err != nil {
		log.Fatalf("credential box: %v", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("begin tx: %v", err)
	}
	defer tx.Rollback(ctx)

	// ── clean up previous seed data ──────────────────────────────────────
	const seedEmail = "seed@outreach.dev"
	_, _ = tx.Exec(ctx, `DELETE FROM users WHERE email = $1`, seedEmail)
	fmt.Println("cleaned previous seed data")

	// ── 1. user ──────────────────────────────────────────────────────────
	userID := newID()
	createdAt := daysAgo(120) // account created ~4 months ago

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, email, name, password_hash, locale, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		userID, seedEmail, "Jordan Ops", hashPassword("password123"), "en", createdAt, createdAt,
	)
	must(err, "create user")
	fmt.Printf("created user: %s / password123\n", seedEmail)

	// ── 2. messaging account ─────────────────────────────────────────────
	encryptedKey, err := box.Encrypt("sk-live-unipile-demo-key-do-not-use")
	must(err, "encrypt messaging account api key")

	_, err = tx.Exec(ctx,
		`INSERT INTO messaging_accounts (id, user_id, external_account_id, encrypted_api_key, connected, connection_state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, true, 'OK', $5, $5)`,
		newID(), userID, "unipile-acct-demo-001", encryptedKey, daysAgo(110),
	)
	must(err, "create messaging account")
	fmt.Println("created messaging account")

	// ── 3. business profiles ─────────────────────────────────────────────
	type bizProfile struct {
		id, name, idealCustomer, valueProp, senderTitle, strategy string
		industries, sizes, titles, locations                      []string
		isDefault                                                  bool
	}
	profiles := []bizProfile{
		{
			id:            newID(),
			name:          "DevOps Platform - Core ICP",
			idealCustomer: "Platform and infrastructure teams at Series B-D SaaS companies struggling with deploy velocity",
			industries:    []string{"Software", "Cloud Infrastructure", "DevTools"},
			sizes:         []string{"51-200", "201-500"},
			titles:        []string{"VP Engineering", "Head of Platform", "Director of Infrastructure"},
			locations:     []string{"United States", "Canada"},
			valueProp:     "Cuts deploy lead time from days to minutes with zero-downtime rollouts",
			senderTitle:   "Head of Growth",
			strategy:      "hybrid",
			isDefault:     true,
		},
		{
			id:            newID(),
			name:          "Design Agencies - ABM",
			idealCustomer: "Founders and creative directors at boutique design agencies looking to scale client ops",
			industries:    []string{"Design", "Marketing Agencies"},
			sizes:         []string{"11-50"},
			titles:        []string{"Founder", "Creative Director", "Head of Operations"},
			locations:     []string{"United States", "United Kingdom"},
			valueProp:     "Automates client handoff so agencies bill more hours on creative work",
			senderTitle:   "Partnerships Lead",
			strategy:      "direct",
			isDefault:     false,
		},
		{
			id:            newID(),
			name:          "AI Infra - Warm Network",
			idealCustomer: "ML platform leads evaluating GPU scheduling and inference cost tooling",
			industries:    []string{"Artificial Intelligence", "Machine Learning"},
			sizes:         []string{"201-500", "501-1000"},
			titles:        []string{"Head of ML Platform", "Staff ML Engineer"},
			locations:     []string{"United States"},
			valueProp:     "Cuts GPU inference spend by 40% with autoscaling schedulers",
			senderTitle:   "Head of Growth",
			strategy:      "gradual",
			isDefault:     false,
		},
	}
	for _, p := range profiles {
		_, err = tx.Exec(ctx,
			`INSERT INTO business_profiles (id, user_id, name, is_default, ideal_customer_description, target_industries,
				target_company_sizes, target_titles, target_locations, value_proposition, sender_name, sender_title,
				message_strategy, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)`,
			p.id, userID, p.name, p.isDefault, p.idealCustomer, p.industries, p.sizes, p.titles, p.locations,
			p.valueProp, "Jordan Ops", p.senderTitle, p.strategy, daysAgo(randBetween(95, 115)),
		)
		must(err, "create business profile "+p.name)
	}
	fmt.Printf("created %d business profiles\n", len(profiles))

	// ── 4. campaigns ─────────────────────────────────────────────────────
	type campaign struct{ id, name, profileID string }
	campaigns := []campaign{
		{newID(), "Q3 DevOps SaaS Outreach", profiles[0].id},
		{newID(), "Design Agency ABM", profiles[1].id},
		{newID(), "AI Infra Warm List", profiles[2].id},
		{newID(), "Re-engagement - Cold Leads", profiles[0].id},
	}
	for _, c := range campaigns {
		_, err = tx.Exec(ctx,
			`INSERT INTO campaigns (id, user_id, name, business_profile_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $5)`,
			c.id, userID, c.name, c.profileID, daysAgo(randBetween(80, 100)),
		)
		must(err, "create campaign "+c.name)
	}
	fmt.Printf("created %d campaigns\n", len(campaigns))

	// ── 5. leads ─────────────────────────────────────────────────────────
	type leadDef struct {
		firstName, lastName, title, company, status, scoreLabel string
		campaignIdx, score                                      int
	}
	leadDefs := []leadDef{
		{"Priya", "Natarajan", "VP Engineering", "Northwind Cloud", "new", "warm", 0, 62},
		{"Marcus", "Webb", "Head of Platform", "Driftline Systems", "invitation_sent", "hot", 0, 81},
		{"Sana", "Okafor", "Director of Infrastructure", "Basecamp Rail", "connected", "hot", 0, 88},
		{"Devon", "Ruiz", "VP Engineering", "Loomware", "in_conversation", "hot", 0, 90},
		{"Harriet", "Sloane", "Head of Platform", "Tidewater Systems", "meeting_scheduled", "hot", 0, 95},
		{"Ola", "Bergstrom", "Director of Infrastructure", "Kite & Anchor", "disqualified", "cold", 0, 20},
		{"Grace", "Feldman", "VP Engineering", "Parallax Cloud", "new", "warm", 0, 55},
		{"Imran", "Qureshi", "Head of Platform", "Silvermine Data", "invitation_sent", "warm", 0, 58},

		{"Talia", "Moreau", "Founder", "Studio Verve", "new", "warm", 1, 60},
		{"Bram", "Vogel", "Creative Director", "Ember & Oak", "invitation_sent", "warm", 1, 57},
		{"Noor", "Haddad", "Head of Operations", "Lighthouse Creative", "connected", "hot", 1, 84},
		{"Felix", "Arnaud", "Founder", "Stonebridge Studio", "in_conversation", "hot", 1, 87},
		{"Ingrid", "Solberg", "Creative Director", "Northfolk Agency", "disqualified", "cold", 1, 18},

		{"Wei", "Tanaka", "Head of ML Platform", "Orbital Compute", "new", "warm", 2, 65},
		{"Renata", "Alves", "Staff ML Engineer", "Fathom AI", "invitation_sent", "hot", 2, 79},
		{"Samuel", "Okonkwo", "Head of ML Platform", "Crestline Labs", "connected", "hot", 2, 86},
		{"Lina", "Abramova", "Staff ML Engineer", "Polaris Models", "meeting_scheduled", "hot", 2, 93},
		{"Tomas", "Dvorak", "Head of ML Platform", "Nimbus Intelligence", "disqualified", "cold", 2, 22},

		{"Celeste", "Dupuis", "VP Engineering", "Ashgrove Systems", "new", "cold", 3, 35},
		{"Victor", "Lindqvist", "Director of Infrastructure", "Redpine Cloud", "new", "warm", 3, 50},
		{"Hana", "Kobayashi", "Head of Platform", "Cobalt Stack", "invitation_sent", "warm", 3, 52},
		{"Aldo", "Ferretti", "VP Engineering", "Ironvale Systems", "disqualified", "cold", 3, 15},
	}

	type leadRecord struct {
		id, status string
		campaignIdx int
	}
	var leadRecords []leadRecord

	for i, ld := range leadDefs {
		leadID := newID()
		leadRecords = append(leadRecords, leadRecord{leadID, ld.status, ld.campaignIdx})

		var connectionSentAt, connectedAt, lastMessageAt *time.Time
		var connectionMessage string
		switch ld.status {
		case "invitation_sent":
			t := daysAgo(randBetween(1, 10))
			connectionSentAt = &t
			connectionMessage = fmt.Sprintf("Hi %s, saw your work on infra at %s and wanted to connect.", ld.firstName, ld.company)
		case "connected", "in_conversation", "meeting_scheduled":
			sentAt := daysAgo(randBetween(10, 20))
			connAt := daysAgo(randBetween(5, 9))
			connectionSentAt = &sentAt
			connectedAt = &connAt
			connectionMessage = fmt.Sprintf("Hi %s, saw your work on infra at %s and wanted to connect.", ld.firstName, ld.company)
			if ld.status != "connected" {
				lm := daysAgo(randBetween(1, 4))
				lastMessageAt = &lm
			}
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO leads (id, user_id, campaign_id, first_name, last_name, title, company_name, email,
				external_profile_url, status, score, score_label, score_reason, connection_message,
				connection_sent_at, connected_at, last_message_at, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $18)`,
			leadID, userID, campaigns[ld.campaignIdx].id, ld.firstName, ld.lastName, ld.title, ld.company,
			nil,
			fmt.Sprintf("https://www.linkedin.com/in/%s-%s-%d", lower(ld.firstName), lower(ld.lastName), i),
			ld.status, ld.score, ld.scoreLabel, scoreReason(ld.scoreLabel), connectionMessage,
			connectionSentAt, connectedAt, lastMessageAt, daysAgo(randBetween(15, 90)),
		)
		must(err, "create lead "+ld.firstName+" "+ld.lastName)
	}
	fmt.Printf("created %d leads\n", len(leadDefs))

	// ── 6. automation settings + invitation log ─────────────────────────
	_, err = tx.Exec(ctx,
		`INSERT INTO automation_settings (user_id, enabled, start_hour, start_minute, end_hour, end_minute,
			working_days, timezone, daily_limit, min_delay_seconds, max_delay_seconds, min_lead_score,
			target_statuses, target_campaign_id, invitations_sent_today, last_invitation_at, last_reset_date,
			created_at, updated_at)
		 VALUES ($1, true, 9, 0, 18, 0, 31, 'America/New_York', 18, 45, 180, 40,
			$2, $3, 2, $4, $5, $5, $5)`,
		userID, []string{"new"}, campaigns[0].id, daysAgo(0), daysAgo(0),
	)
	must(err, "create automation settings")
	fmt.Println("created automation settings")

	invitationDefs := []struct {
		leadIdx                int
		success                bool
		providerCode           int
		failureReason          string
		daysAgo                int
	}{
		{1, true, 200, "", 5},
		{7, true, 200, "", 3},
		{17, false, 429, "weekly invitation limit reached", 2},
	}
	for _, inv := range invitationDefs {
		lr := leadRecords[inv.leadIdx]
		var fr *string
		if inv.failureReason != "" {
			fr = &inv.failureReason
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO invitation_logs (id, user_id, lead_id, campaign_id, lead_name, campaign_name,
				message_preview, success, provider_status_code, failure_reason, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			newID(), userID, lr.id, campaigns[lr.campaignIdx].id,
			leadDefs[inv.leadIdx].firstName+" "+leadDefs[inv.leadIdx].lastName, campaigns[lr.campaignIdx].name,
			"Hi, saw your work and wanted to connect.", inv.success, inv.providerCode, fr, daysAgo(inv.daysAgo),
		)
		must(err, "create invitation log")
	}
	fmt.Printf("created %d invitation log entries\n", len(invitationDefs))

	// ── 7. sequences + steps ──────────────────────────────────────────────
	type sequenceDef struct {
		id, name, status, mode, strategy, profileID string
	}
	sequences := []sequenceDef{
		{newID(), "Classic - DevOps 3-touch", "active", "classic", "hybrid", profiles[0].id},
		{newID(), "Classic - Design Agency Intro", "draft", "classic", "direct", profiles[1].id},
		{newID(), "Smart Pipeline - AI Infra Conversations", "active", "smart_pipeline", "gradual", profiles[2].id},
		{newID(), "Smart Pipeline - Cold Re-engagement", "paused", "smart_pipeline", "hybrid", profiles[0].id},
	}
	for _, s := range sequences {
		_, err = tx.Exec(ctx,
			`INSERT INTO sequences (id, user_id, name, status, mode, business_profile_id, message_strategy, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
			s.id, userID, s.name, s.status, s.mode, s.profileID, s.strategy, daysAgo(randBetween(60, 90)),
		)
		must(err, "create sequence "+s.name)
	}
	fmt.Printf("created %d sequences\n", len(sequences))

	type stepDef struct {
		sequenceIdx, order, delayDays  int
		stepType, promptContext        string
	}
	stepDefs := []stepDef{
		{0, 1, 0, "connection_request", "Reference their infra stack and deploy pain points."},
		{0, 2, 3, "follow_up_message", "Thank them for connecting, ask about current deploy cadence."},
		{0, 3, 7, "follow_up_message", "Share a short case study, propose a 15 minute call."},

		{1, 1, 0, "connection_request", "Mention a mutual agency contact if one exists."},
		{1, 2, 4, "follow_up_message", "Ask about their current client handoff process."},
	}
	for _, sd := range stepDefs {
		_, err = tx.Exec(ctx,
			`INSERT INTO sequence_steps (id, sequence_id, step_order, step_type, delay_days, prompt_context)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			newID(), sequences[sd.sequenceIdx].id, sd.order, sd.stepType, sd.delayDays, sd.promptContext,
		)
		must(err, fmt.Sprintf("create sequence step %d for sequence %d", sd.order, sd.sequenceIdx))
	}
	fmt.Printf("created %d sequence steps\n", len(stepDefs))

	// ── 8. sequence enrollments ───────────────────────────────────────────
	type classicMessage struct {
		StepOrder int       `json:"step_order"`
		SentAt    time.Time `json:"sent_at"`
		Content   string    `json:"content"`
	}

	// Classic enrollments against leads already past "new" on campaign 0.
	classicEnrollments := []struct {
		leadIdx          int
		currentStepOrder int
		nextDueInHours   int
		sentSteps        []int
	}{
		{1, 1, 6, []int{1}},
		{2, 2, -36, []int{1, 2}},
		{3, 2, 12, []int{1, 2}},
	}
	for _, ce := range classicEnrollments {
		lr := leadRecords[ce.leadIdx]
		enrollmentID := newID()

		var messages []classicMessage
		for _, stepOrd := range ce.sentSteps {
			messages = append(messages, classicMessage{
				StepOrder: stepOrd,
				SentAt:    daysAgo(randBetween(1, 5)),
				Content:   "Hi, following up on my last message.",
			})
		}

		enrolledAt := daysAgo(randBetween(5, 15))
		_, err = tx.Exec(ctx,
			`INSERT INTO sequence_enrollments (id, sequence_id, lead_id, user_id, status, current_step_order,
				next_step_due_at, messages_sent, enrolled_at, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, 'active', $5, $6, $7, $8, $8, $8)`,
			enrollmentID, sequences[0].id, lr.id, userID, ce.currentStepOrder,
			hoursFromNow(ce.nextDueInHours), mustJSON(messages), enrolledAt,
		)
		must(err, "create classic enrollment")

		_, err = tx.Exec(ctx, `UPDATE leads SET active_sequence_id = $1 WHERE id = $2`, enrollmentID, lr.id)
		must(err, "link lead to classic enrollment")
	}
	fmt.Printf("created %d classic enrollments\n", len(classicEnrollments))

	// Smart-pipeline enrollments against the AI infra campaign leads.
	pipelineEnrollments := []struct {
		leadIdx        int
		phase          string
		phaseAgeDays   int
		messagesInPhase int
		lastResponse   string
	}{
		{14, "apertura", 2, 1, ""},
		{15, "calificacion", 4, 2, "We're evaluating a few vendors, what's your pricing model?"},
		{16, "valor", 1, 1, "This looks promising, can we set up a call next week?"},
	}
	for _, pe := range pipelineEnrollments {
		lr := leadRecords[pe.leadIdx]
		enrollmentID := newID()
		phaseEnteredAt := daysAgo(pe.phaseAgeDays)

		var lastResponseAt *time.Time
		var lastResponseText *string
		if pe.lastResponse != "" {
			t := daysAgo(pe.phaseAgeDays - 1)
			lastResponseAt = &t
			lastResponseText = &pe.lastResponse
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO sequence_enrollments (id, sequence_id, lead_id, user_id, status, messages_sent, enrolled_at,
				current_phase, phase_entered_at, last_response_at, last_response_text, messages_in_phase,
				total_messages_sent, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, 'active', '[]', $5, $6, $7, $8, $9, $10, $10, $5, $5)`,
			enrollmentID, sequences[2].id, lr.id, userID, daysAgo(pe.phaseAgeDays+1),
			pe.phase, phaseEnteredAt, lastResponseAt, lastResponseText, pe.messagesInPhase,
		)
		must(err, "create pipeline enrollment")

		_, err = tx.Exec(ctx, `UPDATE leads SET active_sequence_id = $1 WHERE id = $2`, enrollmentID, lr.id)
		must(err, "link lead to pipeline enrollment")
	}
	fmt.Printf("created %d smart-pipeline enrollments\n", len(pipelineEnrollments))

	// ── commit ───────────────────────────────────────────────────────────
	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("commit: %v", err)
	}

	fmt.Println("\n✓ seed completed successfully!")
	fmt.Printf("  login: %s / password123\n", seedEmail)
}

func scoreReason(label string) string {
	switch label {
	case "hot":
		return "Title and company size match the ideal customer profile closely."
	case "warm":
		return "Partial match on target titles, company size within range."
	default:
		return "Outside target company size and seniority band."
	}
}

func lower(s string) string {
	r := []rune(s)
	for i, c := range r {
		if c >= 'A' && c <= 'Z' {
			r[i] = c + ('a' - 'A')
		}
	}
	return string(r)
}

func must(err error, msg string) {
	if err != nil {
		log.Fatalf("%s: %v", msg, err)
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
