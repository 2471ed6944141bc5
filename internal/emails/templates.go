package emails

import (
	"context"
	"fmt"
)

// SendOrgInvite sends the org invitation email carrying the signup invite code.
func SendOrgInvite(ctx context.Context, m Mailer, recipient, orgName, inviteCode string) error {
	subject := fmt.Sprintf("Convite para participar da ONG %s - Instituto Impacto Social", orgName)
	text := fmt.Sprintf(
		"Olá!\n\n"+
			"Você foi convidado para fazer parte da equipe da ONG %s no Instituto Impacto Social.\n\n"+
			"Para aceitar o convite e criar sua conta, use o código abaixo durante o cadastro:\n\n"+
			"%s\n\n"+
			"Com este código, você terá acesso à plataforma e poderá colaborar nas atividades da %s.\n\n"+
			"Se você não esperava este email, pode ignorá-lo com segurança.\n",
		orgName, inviteCode, orgName,
	)
	html := EmailLayout(fmt.Sprintf(`
    <h1>Olá!</h1>
    <p>Você foi convidado para fazer parte da equipe da ONG <strong>%s</strong> no Instituto Impacto Social.</p>
    <p>Para aceitar o convite e criar sua conta, use o código abaixo durante o cadastro:</p>
    <div class="invite-code">%s</div>
    <p>Com este código, você terá acesso à plataforma e poderá colaborar nas atividades da %s.</p>
    <p style="font-size:14px;color:#666;">Se você não esperava este email, pode ignorá-lo com segurança.</p>
`, EscapeHTML(orgName), EscapeHTML(inviteCode), EscapeHTML(orgName)))
	return m.Send(ctx, subject, []string{recipient}, text, html)
}

// SendOrgValidation notifies an org about its approval decision.
func SendOrgValidation(ctx context.Context, m Mailer, recipient, orgName string, approved bool, reason string) error {
	var subject, text, content string
	if approved {
		subject = fmt.Sprintf("ONG %s aprovada - Instituto Impacto Social", orgName)
		text = fmt.Sprintf(
			"Olá!\n\nA ONG %s foi aprovada na plataforma Instituto Impacto Social.\n"+
				"A partir de agora ela está visível para doações e pode convidar assistentes.\n",
			orgName,
		)
		content = fmt.Sprintf(`
    <h1>ONG aprovada</h1>
    <p>A ONG <strong>%s</strong> foi aprovada na plataforma Instituto Impacto Social.</p>
    <p>A partir de agora ela está visível para doações e pode convidar assistentes.</p>
`, EscapeHTML(orgName))
	} else {
		if reason == "" {
			reason = "sem motivo informado"
		}
		subject = fmt.Sprintf("Cadastro da ONG %s não aprovado - Instituto Impacto Social", orgName)
		text = fmt.Sprintf(
			"Olá!\n\nO cadastro da ONG %s não foi aprovado.\nMotivo: %s\n\n"+
				"Você pode ajustar as informações e solicitar nova avaliação.\n",
			orgName, reason,
		)
		content = fmt.Sprintf(`
    <h1>Cadastro não aprovado</h1>
    <p>O cadastro da ONG <strong>%s</strong> não foi aprovado.</p>
    <p><strong>Motivo:</strong> %s</p>
    <p>Você pode ajustar as informações e solicitar nova avaliação.</p>
`, EscapeHTML(orgName), EscapeHTML(reason))
	}
	return m.Send(ctx, subject, []string{recipient}, text, EmailLayout(content))
}
