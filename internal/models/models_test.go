package models

import (
	"testing"
	"time"
)

func TestAuthSessionIsExpired(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: now.Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "expires exactly now",
			expiresAt: now,
			want:      true,
		},
		{
			name:      "expired yesterday",
			expiresAt: now.Add(-24 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := AuthSession{
				ID:        "acct-1",
				LoginTime: now.Add(-1 * time.Hour),
				ExpiresAt: tt.expiresAt,
			}
			if got := session.IsExpired(now); got != tt.want {
				t.Errorf("AuthSession.IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPermissionsForRole(t *testing.T) {
	parent := &AuthSession{Role: RoleParent, Permissions: PermissionsForRole(RoleParent)}
	therapist := &AuthSession{Role: RoleTherapist, Permissions: PermissionsForRole(RoleTherapist)}

	if !parent.HasPermission(PermManageTherapists) {
		t.Error("parent should be able to manage therapists")
	}
	if !parent.HasPermission(PermClearData) {
		t.Error("parent should be able to clear data")
	}
	if therapist.HasPermission(PermManageTherapists) {
		t.Error("therapist must not manage therapists")
	}
	if therapist.HasPermission(PermClearData) {
		t.Error("therapist must not clear data")
	}
	if !therapist.HasPermission(PermViewReports) {
		t.Error("therapist should view reports")
	}
	if PermissionsForRole(Role("admin")) != nil {
		t.Error("unknown role should have no permissions")
	}
}

func TestWordStatMasteryAndNeedsWork(t *testing.T) {
	tests := []struct {
		name          string
		stat          WordStat
		wantMastered  bool
		wantNeedsWork bool
	}{
		{name: "too few attempts", stat: WordStat{Attempts: 2, Correct: 0}},
		{name: "mastered", stat: WordStat{Attempts: 10, Correct: 9}, wantMastered: true},
		{name: "struggling", stat: WordStat{Attempts: 4, Correct: 1}, wantNeedsWork: true},
		{name: "middling", stat: WordStat{Attempts: 4, Correct: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stat.IsMastered(); got != tt.wantMastered {
				t.Errorf("IsMastered() = %v, want %v", got, tt.wantMastered)
			}
			if got := tt.stat.NeedsWork(DashboardNeedsWorkPercent); got != tt.wantNeedsWork {
				t.Errorf("NeedsWork() = %v, want %v", got, tt.wantNeedsWork)
			}
		})
	}
}

func TestModeValid(t *testing.T) {
	for _, m := range AllModes {
		if !m.Valid() {
			t.Errorf("mode %q should be valid", m)
		}
	}
	if Mode("hangman").Valid() {
		t.Error("unknown mode should be invalid")
	}
}

func TestParseTimeframe(t *testing.T) {
	tests := []struct {
		input   string
		want    Timeframe
		wantErr bool
	}{
		{input: "day", want: TimeframeDay},
		{input: " Week ", want: TimeframeWeek},
		{input: "month", want: TimeframeMonth},
		{input: "all", want: TimeframeAll},
		{input: "year", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeframe(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeframe(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTimeframe(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTimeframeWindowStart(t *testing.T) {
	now := time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)

	if got := TimeframeDay.WindowStart(now); !got.Equal(now.Add(-24 * time.Hour)) {
		t.Errorf("day window = %v", got)
	}
	if got := TimeframeWeek.WindowStart(now); !got.Equal(now.Add(-7 * 24 * time.Hour)) {
		t.Errorf("week window = %v", got)
	}
	if got := TimeframeMonth.WindowStart(now); !got.Equal(now.AddDate(0, -1, 0)) {
		t.Errorf("month window = %v", got)
	}
	if got := TimeframeAll.WindowStart(now); !got.Equal(time.Unix(0, 0)) {
		t.Errorf("all window = %v", got)
	}
}

func TestProgressDataCloneIsDeep(t *testing.T) {
	end := time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC)
	difficulty := 2
	data := NewProgressData()
	data.Sessions = append(data.Sessions, Session{
		ID:          "s1",
		EndTime:     &end,
		WordDetails: map[string]WordDetail{"cat": {Attempts: 1, Correct: 1}},
		Attempts:    []Attempt{{Word: "cat", Correct: true, Difficulty: &difficulty}},
	})
	data.WordStats["cat"] = WordStat{Attempts: 1, Correct: 1}

	clone := data.Clone()
	clone.WordStats["cat"] = WordStat{Attempts: 99}
	clone.Sessions[0].WordDetails["cat"] = WordDetail{Attempts: 99}
	*clone.Sessions[0].Attempts[0].Difficulty = 3
	*clone.Sessions[0].EndTime = end.Add(time.Hour)

	if data.WordStats["cat"].Attempts != 1 {
		t.Error("clone shares WordStats with original")
	}
	if data.Sessions[0].WordDetails["cat"].Attempts != 1 {
		t.Error("clone shares WordDetails with original")
	}
	if difficulty != 2 {
		t.Error("clone shares attempt difficulty with original")
	}
	if !data.Sessions[0].EndTime.Equal(end) {
		t.Error("clone shares EndTime with original")
	}
}

func TestSessionAccuracy(t *testing.T) {
	empty := Session{}
	if empty.Accuracy() != 0 {
		t.Errorf("empty session accuracy = %v, want 0", empty.Accuracy())
	}
	s := Session{WordsAttempted: 4, WordsCorrect: 3}
	if s.Accuracy() != 75 {
		t.Errorf("accuracy = %v, want 75", s.Accuracy())
	}
}
