package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Prompts holds the per-handler prompt templates. Each template receives the
// user's instruction and, where relevant, the resource content; handlers do
// the substitution themselves since only they know their slots.
type Prompts struct {
	Edit    string `yaml:"edit"`
	Doc     string `yaml:"doc"`
	Fix     string `yaml:"fix"`
	Test    string `yaml:"test"`
	Run     string `yaml:"run"`
	Analyze string `yaml:"analyze"`
}

// DefaultPrompts returns the built-in templates. Every template that expects
// a full-file replacement instructs the model to return one fenced block
// with the complete updated content, which is what the extractor is tuned
// for.
func DefaultPrompts() Prompts {
	return Prompts{
		Edit: "You are a precise code editor. Apply the instruction to the file below and " +
			"return the COMPLETE updated file in a single fenced code block. Do not elide " +
			"any part of the file.\n\nInstruction: %[1]s\n\nFile %[2]s:\n```\n%[3]s\n```",
		Doc: "Add clear documentation comments to the file below, following the conventions " +
			"of its language. Return the COMPLETE updated file in a single fenced code " +
			"block. %[1]s\n\nFile %[2]s:\n```\n%[3]s\n```",
		Fix: "Fix the problem described below in the given file. Return the COMPLETE " +
			"corrected file in a single fenced code block.\n\nProblem: %[1]s\n\nFile %[2]s:\n" +
			"```\n%[3]s\n```",
		Test: "Write a thorough test file for the code below. %[1]s\nReturn ONLY the test " +
			"file content in a single fenced code block.\n\nFile %[2]s:\n```\n%[3]s\n```",
		Run: "Produce an execution plan for running the file below as a JSON object with " +
			"exactly two fields: \"command\" (string) and \"args\" (array of strings). " +
			"Return ONLY the JSON object.\n\nFile: %[2]s\nNotes: %[1]s",
		Analyze: "You are a UI reviewer. Analyze the following page snapshot and report " +
			"layout, accessibility, and copy issues.\n\nRequest: %[1]s\n\nSnapshot of %[2]s:\n%[3]s",
	}
}

// promptsFile mirrors the YAML override file layout.
type promptsFile struct {
	Prompts Prompts `yaml:"prompts"`
}

// LoadPrompts merges overrides from a YAML file over the defaults. A missing
// file yields the defaults without error; empty fields keep their default.
func LoadPrompts(path string) (Prompts, error) {
	prompts := DefaultPrompts()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return prompts, nil
	}
	if err != nil {
		return prompts, err
	}

	var pf promptsFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return prompts, err
	}

	merge := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	merge(&prompts.Edit, pf.Prompts.Edit)
	merge(&prompts.Doc, pf.Prompts.Doc)
	merge(&prompts.Fix, pf.Prompts.Fix)
	merge(&prompts.Test, pf.Prompts.Test)
	merge(&prompts.Run, pf.Prompts.Run)
	merge(&prompts.Analyze, pf.Prompts.Analyze)

	return prompts, nil
}
