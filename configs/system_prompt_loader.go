package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SystemPromptConfig はsystem_prompt.yamlの構造を定義
type SystemPromptConfig struct {
	System struct {
		Role     string `yaml:"role"`
		Version  string `yaml:"version"`
		Language string `yaml:"language"`
	} `yaml:"system"`

	ResponseGuidelines []struct {
		Priority  int    `yaml:"priority"`
		Condition string `yaml:"condition"`
		Action    string `yaml:"action"`
	} `yaml:"response_guidelines"`

	Tone struct {
		Style       string `yaml:"style"`
		Personality string `yaml:"personality"`
	} `yaml:"tone"`

	Constraints []string `yaml:"constraints"`

	SpecialCommands struct {
		Help struct {
			Trigger  []string `yaml:"trigger"`
			Response string   `yaml:"response"`
		} `yaml:"help"`
	} `yaml:"special_commands"`
}

const defaultSystemPromptYAML = `
system:
  role: "an analyst who answers questions about app store reviews using only the dataset context provided"
  version: "1.0"
  language: "match the user's language"
response_guidelines:
  - priority: 1
    condition: "the question is about ratings, sentiment or categories"
    action: "quote the counts and percentages from the dataset context"
  - priority: 2
    condition: "the question asks what users complain about or request"
    action: "summarise recurring themes and cite short review excerpts"
  - priority: 3
    condition: "the dataset context does not contain the answer"
    action: "say so plainly instead of guessing"
tone:
  style: "concise and factual"
  personality: "a product analyst"
constraints:
  - "Do not invent reviews or numbers."
  - "Keep answers under 300 words unless asked for detail."
special_commands:
  help:
    trigger: ["/help", "help me", "what can you do"]
    response: "Ask me about the uploaded reviews: rating trends, common complaints, feature requests, platform differences or what users like most."
`

// LoadSystemPrompt はYAMLファイルからシステムプロンプト設定を読み込む。pathが空なら組み込みの設定を使う
func LoadSystemPrompt(path string) (*SystemPromptConfig, error) {
	data := []byte(defaultSystemPromptYAML)
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("システムプロンプト設定ファイルの読み込みに失敗: %w", err)
		}
		data = b
	}

	var cfg SystemPromptConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("YAMLのパースに失敗: %w", err)
	}
	return &cfg, nil
}

// DefaultSystemPrompt 組み込みの設定
func DefaultSystemPrompt() *SystemPromptConfig {
	cfg, err := LoadSystemPrompt("")
	if err != nil {
		panic(err)
	}
	return cfg
}

// BuildSystemPrompt は設定からシステムプロンプトを構築
func (c *SystemPromptConfig) BuildSystemPrompt() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are %s.\n", c.System.Role))
	if c.System.Language != "" {
		sb.WriteString(fmt.Sprintf("Language: %s.\n", c.System.Language))
	}
	sb.WriteString("\n")

	if len(c.ResponseGuidelines) > 0 {
		sb.WriteString("## Guidelines\n")
		for _, g := range c.ResponseGuidelines {
			sb.WriteString(fmt.Sprintf("%d. When %s: %s\n", g.Priority, g.Condition, g.Action))
		}
		sb.WriteString("\n")
	}

	if c.Tone.Style != "" || c.Tone.Personality != "" {
		sb.WriteString("## Tone\n")
		sb.WriteString(fmt.Sprintf("- Style: %s\n", c.Tone.Style))
		sb.WriteString(fmt.Sprintf("- Personality: %s\n", c.Tone.Personality))
		sb.WriteString("\n")
	}

	if len(c.Constraints) > 0 {
		sb.WriteString("## Constraints\n")
		for _, constraint := range c.Constraints {
			sb.WriteString(fmt.Sprintf("- %s\n", constraint))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// CheckSpecialCommand は特別なコマンドかチェック
func (c *SystemPromptConfig) CheckSpecialCommand(message string) (bool, string) {
	lowerMsg := strings.ToLower(strings.TrimSpace(message))
	for _, trigger := range c.SpecialCommands.Help.Trigger {
		if strings.Contains(lowerMsg, strings.ToLower(trigger)) {
			return true, c.SpecialCommands.Help.Response
		}
	}
	return false, ""
}
