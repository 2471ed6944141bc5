package emails

import (
	"fmt"
	"time"
)

const (
	themePrimary   = "#667EEA"
	themeSecondary = "#764BA2"
	themeBgBody    = "#F4F4F7"
	themeTextMuted = "#9CA3AF"
)

// EmailLayout wraps content in the shared transactional HTML layout.
func EmailLayout(contentHTML string) string {
	year := time.Now().Year()
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Instituto Impacto Social</title>
  <style>
    body { margin: 0; padding: 0; width: 100%% !important; background-color: %s; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; }
    table { border-collapse: collapse; }
    .content-body p { margin: 0 0 20px; color: #4A5568; font-size: 16px; line-height: 1.6; }
    .content-body h1 { margin: 0 0 20px; color: #1A202C; font-size: 24px; font-weight: 600; }
    .invite-code { background-color: #F8F9FF; border: 2px dashed %s; border-radius: 8px; padding: 16px; text-align: center; font-size: 24px; font-weight: 700; letter-spacing: 4px; color: %s; margin: 0 0 24px; }
    .footer-text { color: %s; font-size: 12px; }
  </style>
</head>
<body style="background-color:%s;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="background-color:%s;padding:40px 20px;">
    <tr>
      <td align="center">
        <table width="100%%" cellpadding="0" cellspacing="0" style="max-width:600px;background-color:#ffffff;border-radius:12px;overflow:hidden;">
          <tr>
            <td style="background:linear-gradient(135deg,%s 0%%,%s 100%%);padding:40px 30px;text-align:center;">
              <h1 style="margin:0;color:#ffffff;font-size:28px;font-weight:700;">Instituto Impacto Social</h1>
            </td>
          </tr>
          <tr>
            <td class="content-body" style="padding:40px 30px;">%s</td>
          </tr>
          <tr>
            <td style="padding:24px 30px;text-align:center;">
              <p class="footer-text">&copy; %d Instituto Impacto Social</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`,
		themeBgBody, themePrimary, themePrimary, themeTextMuted, themeBgBody, themeBgBody,
		themePrimary, themeSecondary, contentHTML, year)
}
