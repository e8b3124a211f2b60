package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabdrill/internal/models"
)

func TestEmailServiceDisabled(t *testing.T) {
	svc, err := NewEmailService("us-east-1", "", "", "http://localhost:8080", false)
	require.NoError(t, err)
	assert.False(t, svc.IsEnabled())

	result := &models.StudyResult{TotalWords: 3, CorrectWords: 2}
	assert.NoError(t, svc.SendStudyReport(context.Background(), "teacher@example.com", "Class", result, nil))
	assert.NoError(t, svc.SendAdminWelcomeEmail(context.Background(), "admin@example.com", "Admin"))
}

func TestBuildStudyReport(t *testing.T) {
	result := &models.StudyResult{Style: "typed", Direction: "englishToKorean", TotalWords: 4, CorrectWords: 3}
	missed := []models.Word{{English: "<cat>", Korean: "고양이"}}

	subject, htmlBody, textBody := buildStudyReport("Class 1A", "http://localhost:8080", result, missed)

	assert.Equal(t, "Vocabdrill report: Class 1A (75%)", subject)
	assert.Contains(t, htmlBody, "3 of 4 words correct")
	assert.Contains(t, htmlBody, "&lt;cat&gt;", "word text is escaped in HTML")
	assert.Contains(t, textBody, "- <cat> / 고양이")

	_, htmlBody, textBody = buildStudyReport("Class 1A", "http://localhost:8080", result, nil)
	assert.True(t, strings.Contains(htmlBody, "No missed words") && strings.Contains(textBody, "No missed words"))
}
