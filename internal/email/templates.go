package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

const receiptTemplate = `<p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
<p>Your payment of <strong>{{.Amount}} {{.Currency}}</strong> was received.</p>
<ul>
  <li>Order: {{.OrderID}}</li>
  <li>Receipt: {{.Receipt}}</li>
  {{if .Credits}}<li>Credits added: {{.Credits}}</li>{{end}}
  {{if .Feature}}<li>Unlocked: {{.Feature}}</li>{{end}}
</ul>
<p>Thank you for using ResumeAI.</p>`

// TemplateManager - потокобезопасный набор html-шаблонов
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager создает менеджер со встроенными шаблонами
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{templates: make(map[string]*template.Template)}
	if err := tm.AddTemplate("payment_receipt", receiptTemplate); err != nil {
		panic(err)
	}
	return tm
}

func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()
	return nil
}
