package mailer

// WelcomeEmailTemplate is the HTML body for the sign-up welcome email.
// Placeholders: {{name}}, {{intro}}.
const WelcomeEmailTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Welcome to Tickrflow</title>
</head>
<body style="margin:0;padding:0;background-color:#0b0e11;font-family:Arial,Helvetica,sans-serif;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="background-color:#0b0e11;">
    <tr>
      <td align="center" style="padding:32px 16px;">
        <table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background-color:#141821;border-radius:8px;">
          <tr>
            <td style="padding:32px;">
              <h1 style="color:#facc15;margin:0 0 8px;font-size:24px;">Tickrflow</h1>
              <h2 style="color:#ffffff;margin:0 0 16px;font-size:20px;">Welcome aboard, {{name}}!</h2>
              <p style="color:#cbd5e1;font-size:15px;line-height:1.6;margin:0 0 24px;">{{intro}}</p>
              <p style="color:#cbd5e1;font-size:15px;line-height:1.6;margin:0 0 24px;">
                Here is what you can do right now:
              </p>
              <ul style="color:#cbd5e1;font-size:15px;line-height:1.8;margin:0 0 24px;padding-left:20px;">
                <li>Search for stocks and add them to your watchlist</li>
                <li>Explore live chart widgets for any ticker</li>
                <li>Get a daily AI-curated news digest for the stocks you track</li>
              </ul>
              <p style="color:#64748b;font-size:13px;margin:24px 0 0;">
                You are receiving this email because you signed up for Tickrflow.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

// NewsSummaryEmailTemplate is the HTML body for the daily digest email.
// Placeholders: {{date}}, {{newsContent}}.
const NewsSummaryEmailTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Market News Summary</title>
</head>
<body style="margin:0;padding:0;background-color:#0b0e11;font-family:Arial,Helvetica,sans-serif;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="background-color:#0b0e11;">
    <tr>
      <td align="center" style="padding:32px 16px;">
        <table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background-color:#141821;border-radius:8px;">
          <tr>
            <td style="padding:32px;">
              <h1 style="color:#facc15;margin:0 0 8px;font-size:24px;">Tickrflow News</h1>
              <p style="color:#94a3b8;font-size:14px;margin:0 0 24px;">Market News Summary - {{date}}</p>
              <div style="color:#cbd5e1;font-size:15px;line-height:1.7;">{{newsContent}}</div>
              <p style="color:#64748b;font-size:13px;margin:32px 0 0;">
                You receive this digest daily at noon. Update your watchlist on Tickrflow to change what we cover.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
