package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"meibo/internal/domain"
	"meibo/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendBatchSummary(ctx context.Context, toEmail string, audit *domain.BatchAudit) error {
	subject := fmt.Sprintf("スキャン取込完了: %d名 (%d枚)", audit.RecordCount, audit.FileCount)
	textBody := fmt.Sprintf(
		"スキャン取込が完了しました。\n\nバッチID: %s\nアップロード: %d枚\n抽出: %d件\n照合後: %d名\n要確認: %d名\n取込日時: %s\n",
		audit.ID, audit.FileCount, audit.RawCount, audit.RecordCount, audit.NeedsReview,
		audit.CreatedAt.Format("2006-01-02 15:04:05"),
	)
	htmlBody := buildBatchSummaryHTML(audit)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildBatchSummaryHTML(audit *domain.BatchAudit) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">スキャン取込完了</h2>
  <table style="border-collapse: collapse;">
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">バッチID</td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">アップロード</td><td>%d枚</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">抽出</td><td>%d件</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">照合後</td><td>%d名</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">要確認</td><td>%d名</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">取込日時</td><td>%s</td></tr>
  </table>
</body>
</html>`,
		audit.ID, audit.FileCount, audit.RawCount, audit.RecordCount, audit.NeedsReview,
		audit.CreatedAt.Format("2006-01-02 15:04:05"))
}
