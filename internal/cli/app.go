package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"rd-assistant/internal/config"
	"rd-assistant/internal/entity"
	"rd-assistant/internal/pkg/logger"
	"rd-assistant/internal/repository/file"
	"rd-assistant/internal/service"
	"rd-assistant/pkg/document"
	"rd-assistant/pkg/editor"
	"rd-assistant/pkg/llm"
	"rd-assistant/pkg/llm/factory"
	"rd-assistant/pkg/organizer"
	"rd-assistant/pkg/quality"
	"rd-assistant/pkg/reviewer"
	"rd-assistant/pkg/vision"
	"rd-assistant/pkg/visualizer"
)

// Extracted requirements are echoed to the user only above this confidence;
// below it they stay silent even when they were merged.
const displayConfidenceThreshold = 0.8

var (
	assistantColor = color.New(color.FgCyan)
	systemColor    = color.New(color.FgYellow)
	errorColor     = color.New(color.FgRed)
	successColor   = color.New(color.FgGreen)
	headingColor   = color.New(color.FgWhite, color.Bold)
)

// App is the interactive console frontend. One App drives one project
// conversation.
type App struct {
	cfg       *config.Config
	logger    logger.ILogger
	mem       *entity.Memory
	analyzer  service.IAnalyzerService
	storage   *file.SessionStorage
	generator *document.Generator
	checker   *quality.Checker
	vision    *vision.Manager
	organizer *organizer.Organizer
	editor    *editor.Editor
	reviewer  *reviewer.Reviewer
	viz       *visualizer.Visualizer

	in  *bufio.Scanner
	out io.Writer
}

func New(cfg *config.Config, provider llm.LLMProvider, log logger.ILogger, in io.Reader, out io.Writer) *App {
	return &App{
		cfg:       cfg,
		logger:    log,
		mem:       entity.NewMemory(),
		analyzer:  service.NewAnalyzerService(provider, log, cfg.Llm.Temperature, cfg.Llm.MaxTokens),
		storage:   file.NewSessionStorage(cfg.Session.SaveDir),
		generator: document.NewGenerator(),
		checker:   quality.NewChecker(provider),
		vision:    vision.NewManager(provider),
		organizer: organizer.NewOrganizer(provider),
		editor:    editor.NewEditor(provider),
		reviewer:  reviewer.NewReviewer(provider, cfg.Llm.ReviewTokens),
		viz:       visualizer.New(),
		in:        bufio.NewScanner(in),
		out:       out,
	}
}

// Run drives the conversation until the user exits or input closes.
func (a *App) Run(ctx context.Context) error {
	headingColor.Fprintln(a.out, "Requirements Assistant")
	fmt.Fprintln(a.out, "Describe your project and I will help you turn it into requirements.")
	fmt.Fprintln(a.out, "Type 'help' for commands, 'exit' to finish.")
	fmt.Fprintln(a.out)

	a.gatherProjectInfo()

	for {
		fmt.Fprint(a.out, "> ")
		if !a.in.Scan() {
			break
		}
		input := strings.TrimSpace(a.in.Text())
		if input == "" {
			continue
		}

		if done := a.dispatch(ctx, input); done {
			break
		}
	}

	a.finish(ctx)
	return a.in.Err()
}

func (a *App) gatherProjectInfo() {
	systemColor.Fprintln(a.out, "What is the project called?")
	fmt.Fprint(a.out, "> ")
	if !a.in.Scan() {
		return
	}
	name := strings.TrimSpace(a.in.Text())

	systemColor.Fprintln(a.out, "Describe it in a sentence or two.")
	fmt.Fprint(a.out, "> ")
	if !a.in.Scan() {
		return
	}
	description := strings.TrimSpace(a.in.Text())

	a.mem.SetProjectInfo(name, description)
	fmt.Fprintln(a.out)
}

// dispatch handles one input line. It returns true when the session should
// end.
func (a *App) dispatch(ctx context.Context, input string) bool {
	if lower := strings.ToLower(input); lower == "llm" || strings.HasPrefix(lower, "llm ") {
		a.switchProvider(input)
		return false
	}

	switch strings.ToLower(input) {
	case "exit", "quit":
		answer := strings.ToLower(a.promptLine("Finish the session? (y/n)"))
		if answer == "" || answer == "y" || answer == "yes" {
			return true
		}
		systemColor.Fprintln(a.out, "Continuing.")
	case "help", "?":
		a.printHelp()
	case "status":
		a.printStatus()
	case "document", "doc":
		a.exportDocuments()
	case "review":
		a.runReview(ctx)
	case "save":
		a.saveSession()
	case "load":
		a.loadSession()
	case "list":
		a.listSessions()
	case "edit":
		a.editRequirement(ctx)
	case "vision":
		a.extractVision(ctx)
	case "show-vision":
		fmt.Fprintln(a.out, vision.FormatVisionSummary(a.mem.Vision))
	case "prioritize":
		a.prioritize(ctx)
	case "quality":
		a.checkQuality(ctx)
	case "organize":
		a.organize(ctx)
	default:
		a.processMessage(ctx, input)
	}
	return false
}

func (a *App) printHelp() {
	headingColor.Fprintln(a.out, "Commands")
	fmt.Fprintln(a.out, "  status       counts and current focus")
	fmt.Fprintln(a.out, "  document     export the requirements document")
	fmt.Fprintln(a.out, "  review       run the expert panel review")
	fmt.Fprintln(a.out, "  save         save the session to a file")
	fmt.Fprintln(a.out, "  load         restore a saved session")
	fmt.Fprintln(a.out, "  list         list saved sessions")
	fmt.Fprintln(a.out, "  edit         edit a requirement")
	fmt.Fprintln(a.out, "  vision       extract the project vision")
	fmt.Fprintln(a.out, "  show-vision  print the current vision")
	fmt.Fprintln(a.out, "  prioritize   derive MoSCoW feature priorities")
	fmt.Fprintln(a.out, "  quality      score a requirement")
	fmt.Fprintln(a.out, "  organize     restructure the requirement set")
	fmt.Fprintln(a.out, "  llm          show or switch the model backend (llm <provider> [model])")
	fmt.Fprintln(a.out, "  exit         finish and export")
}

func (a *App) processMessage(ctx context.Context, input string) {
	result := a.analyzer.ProcessMessage(ctx, a.mem, input)
	if result.IsError() {
		errorColor.Fprintln(a.out, result.Response.Message)
		return
	}

	assistantColor.Fprintln(a.out, result.Response.Message)

	for _, req := range result.Analysis.ExtractedRequirements {
		if req.Confidence > displayConfidenceThreshold {
			fmt.Fprintf(a.out, "  + [%s] %s\n", req.Type, req.Content)
		}
	}
	for _, question := range result.NextSteps.RecommendedQuestions {
		systemColor.Fprintf(a.out, "  ? %s\n", question)
	}
	fmt.Fprintln(a.out)
}

func (a *App) printStatus() {
	headingColor.Fprintf(a.out, "%s\n", orUnset(a.mem.ProjectName, "(unnamed project)"))
	fmt.Fprintf(a.out, "  requirements: %d\n", len(a.mem.Requirements))
	fmt.Fprintf(a.out, "  constraints:  %d\n", len(a.mem.Constraints))
	fmt.Fprintf(a.out, "  risks:        %d\n", len(a.mem.Risks))
	fmt.Fprintf(a.out, "  focus:        %s\n", orUnset(a.mem.CurrentFocus, "none"))
}

func (a *App) exportDocuments() {
	res, err := a.generator.Export(a.mem, a.cfg.App.OutputDir)
	if err != nil {
		errorColor.Fprintf(a.out, "export failed: %v\n", err)
		return
	}
	understandingPath, err := a.generator.ExportUnderstanding(a.mem, a.cfg.App.OutputDir)
	if err != nil {
		errorColor.Fprintf(a.out, "export failed: %v\n", err)
		return
	}
	successColor.Fprintf(a.out, "wrote %s\n", res.RequirementsPath)
	successColor.Fprintf(a.out, "wrote %s\n", res.HistoryPath)
	successColor.Fprintf(a.out, "wrote %s\n", understandingPath)
}

func (a *App) runReview(ctx context.Context) {
	if len(a.mem.Requirements) == 0 {
		systemColor.Fprintln(a.out, "Nothing to review yet.")
		return
	}

	systemColor.Fprintln(a.out, "Running the expert panel, this takes a few model calls...")
	result, err := a.reviewer.Review(ctx, a.generator.GenerateMarkdown(a.mem))
	if err != nil {
		errorColor.Fprintf(a.out, "review failed: %v\n", err)
		return
	}

	headingColor.Fprintln(a.out, "Requirements overview")
	fmt.Fprintln(a.out, a.viz.GenerateTextTree(a.mem))
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, a.viz.GenerateTextFlow(a.mem))

	if result.Evaluation != "" {
		headingColor.Fprintln(a.out, "Overall evaluation")
		fmt.Fprintf(a.out, "  %s\n", result.Evaluation)
	}

	if len(result.Comments) > 0 {
		headingColor.Fprintln(a.out, "Findings")
		for _, c := range result.Comments {
			fmt.Fprintf(a.out, "  [%s] %s: %s\n", c.Importance, c.Role, c.Content)
			if c.Suggestion != "" {
				fmt.Fprintf(a.out, "      -> %s\n", c.Suggestion)
			}
		}
	}
	if result.Summary != "" {
		headingColor.Fprintln(a.out, "Summary")
		fmt.Fprintf(a.out, "  %s\n", result.Summary)
	}
	for _, imp := range result.Improvements {
		fmt.Fprintf(a.out, "  [%s] %s: %s\n", imp.Priority, imp.Area, imp.Suggestion)
	}
}

func (a *App) saveSession() {
	path, err := a.storage.Save(a.mem)
	if err != nil {
		errorColor.Fprintf(a.out, "save failed: %v\n", err)
		return
	}
	successColor.Fprintf(a.out, "saved %s\n", path)
}

func (a *App) listSessions() {
	infos, err := a.storage.List()
	if err != nil {
		errorColor.Fprintf(a.out, "list failed: %v\n", err)
		return
	}
	if len(infos) == 0 {
		systemColor.Fprintln(a.out, "No saved sessions.")
		return
	}
	for i, info := range infos {
		fmt.Fprintf(a.out, "  %d. %s (%s) requirements=%d constraints=%d risks=%d\n",
			i+1, info.ProjectName, info.SavedAt.Format("2006-01-02 15:04"),
			info.RequirementsCount, info.ConstraintsCount, info.RisksCount)
	}
}

func (a *App) loadSession() {
	infos, err := a.storage.List()
	if err != nil || len(infos) == 0 {
		systemColor.Fprintln(a.out, "No saved sessions.")
		return
	}
	a.listSessions()

	index, ok := a.promptIndex("Which session?", len(infos))
	if !ok {
		return
	}

	mem, err := a.storage.Load(infos[index].FilePath)
	if err != nil {
		errorColor.Fprintf(a.out, "load failed: %v\n", err)
		return
	}
	a.mem = mem
	successColor.Fprintf(a.out, "restored %s\n", infos[index].ProjectName)
}

func (a *App) editRequirement(ctx context.Context) {
	if len(a.mem.Requirements) == 0 {
		systemColor.Fprintln(a.out, "No requirements to edit.")
		return
	}
	for i, req := range a.mem.Requirements {
		fmt.Fprintf(a.out, "  %d. [%s] %s\n", i+1, req.Type, req.Content)
	}

	index, ok := a.promptIndex("Which requirement?", len(a.mem.Requirements))
	if !ok {
		return
	}
	field := strings.ToLower(a.promptLine("Field to edit (content / type / rationale)?"))
	newValue := a.promptLine("New value?")
	if newValue == "" {
		return
	}

	req := a.mem.Requirements[index]
	edited, validation, err := a.editor.EditRequirement(ctx, req, field, newValue)
	if err != nil {
		errorColor.Fprintf(a.out, "edit failed: %v\n", err)
		return
	}
	if edited == nil {
		errorColor.Fprintf(a.out, "rejected: %s\n", validation.Reason)
		if validation.Suggestion != "" {
			systemColor.Fprintf(a.out, "  hint: %s\n", validation.Suggestion)
		}
		return
	}

	a.mem.UpdateRequirement(*edited)
	successColor.Fprintln(a.out, "requirement updated")
}

func (a *App) extractVision(ctx context.Context) {
	if len(a.mem.UnderstandingHistory) == 0 {
		systemColor.Fprintln(a.out, "Talk about the project first, then extract the vision.")
		return
	}

	var conversation []string
	for _, status := range a.mem.UnderstandingHistory {
		conversation = append(conversation, "user: "+status.UserInput)
		conversation = append(conversation, "assistant: "+status.AssistantReply)
	}

	v := a.vision.ExtractVision(ctx, conversation)
	a.mem.UpdateVision(v)
	fmt.Fprintln(a.out, vision.FormatVisionSummary(v))

	if len(a.mem.Requirements) == 0 {
		return
	}
	answer := strings.ToLower(a.promptLine("Analyze feature priorities against this vision? (y/n)"))
	if answer != "y" && answer != "yes" {
		return
	}

	priorities := a.vision.AnalyzePriorities(ctx, v, a.mem)
	fmt.Fprintln(a.out, vision.FormatPrioritySummary(priorities))

	confirm := strings.ToLower(a.promptLine("Apply these priorities? (Y/n)"))
	if confirm == "n" || confirm == "no" {
		systemColor.Fprintln(a.out, "Left priorities unchanged.")
		return
	}
	a.mem.UpdatePriorities(priorities)
	successColor.Fprintf(a.out, "priorities updated (%d features)\n", len(priorities))
}

// prioritize walks every requirement through a model assessment and lets the
// user confirm or override the suggested MoSCoW bucket. Must-have features
// additionally capture which other requirements they depend on.
func (a *App) prioritize(ctx context.Context) {
	if a.mem.Vision == nil {
		systemColor.Fprintln(a.out, "Extract the vision first ('vision').")
		return
	}
	if len(a.mem.Requirements) == 0 {
		systemColor.Fprintln(a.out, "No requirements to prioritize.")
		return
	}

	systemColor.Fprintln(a.out, "Assessing each requirement against the project goals.")
	for i, req := range a.mem.Requirements {
		fmt.Fprintf(a.out, "  %d. [%s] %s\n", i+1, req.Type, req.Content)
	}

	var priorities []entity.FeaturePriority
	for _, req := range a.mem.Requirements {
		fmt.Fprintf(a.out, "\nAnalyzing: %s\n", req.Content)

		assessment, err := a.vision.AssessFeature(ctx, a.mem.Vision, req.Content)
		if err != nil {
			systemColor.Fprintln(a.out, "Skipping this requirement, the analysis failed.")
			continue
		}

		fmt.Fprintf(a.out, "  necessity:  %s\n", assessment.NecessityLevel)
		fmt.Fprintf(a.out, "  impact:     %s\n", assessment.Impact)
		fmt.Fprintf(a.out, "  delay risk: %s\n", assessment.DelayRisk)
		fmt.Fprintf(a.out, "  suggested:  %s (%s)\n", assessment.SuggestedPriority, assessment.Rationale)

		selected, ok := a.promptPriority()
		if !ok {
			systemColor.Fprintln(a.out, "Skipped.")
			continue
		}

		var deps []uuid.UUID
		if selected == entity.PriorityMustHave {
			deps = a.promptDependencies(req.Id)
		}

		priorities = append(priorities, entity.FeaturePriority{
			RequirementId: req.Id,
			Feature:       req.Content,
			Priority:      selected,
			Rationale:     assessment.Rationale,
			Dependencies:  deps,
		})
	}

	if len(priorities) == 0 {
		return
	}

	fmt.Fprintln(a.out, vision.FormatPrioritySummary(priorities))
	answer := strings.ToLower(a.promptLine("Apply these priorities? (Y/n)"))
	if answer == "n" || answer == "no" {
		systemColor.Fprintln(a.out, "Left priorities unchanged.")
		return
	}

	a.mem.UpdatePriorities(priorities)
	successColor.Fprintf(a.out, "priorities updated (%d features)\n", len(priorities))
}

func (a *App) promptPriority() (string, bool) {
	for {
		answer := a.promptLine("Priority? 1=Must Have 2=Should Have 3=Could Have 4=Won't Have 5=skip")
		switch answer {
		case "1":
			return entity.PriorityMustHave, true
		case "2":
			return entity.PriorityShouldHave, true
		case "3":
			return entity.PriorityCouldHave, true
		case "4":
			return entity.PriorityWontHave, true
		case "5", "":
			return "", false
		}
		errorColor.Fprintln(a.out, "invalid selection")
	}
}

// promptDependencies reads comma-separated requirement numbers and resolves
// them to requirement ids. The requirement itself and out-of-range numbers
// are ignored.
func (a *App) promptDependencies(self uuid.UUID) []uuid.UUID {
	answer := a.promptLine("Depends on which requirements? (numbers, comma separated, empty for none)")
	if answer == "" {
		return nil
	}

	var deps []uuid.UUID
	var names []string
	for _, part := range strings.Split(answer, ",") {
		index, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || index < 1 || index > len(a.mem.Requirements) {
			continue
		}
		dep := a.mem.Requirements[index-1]
		if dep.Id == self {
			continue
		}
		deps = append(deps, dep.Id)
		names = append(names, dep.Content)
	}
	if len(names) > 0 {
		fmt.Fprintf(a.out, "  depends on: %s\n", strings.Join(names, ", "))
	}
	return deps
}

type scoredRequirement struct {
	req   entity.Requirement
	score *quality.Score
}

// checkQuality scores the whole requirement set, prints an aggregate summary
// and lists the weakest requirements first.
func (a *App) checkQuality(ctx context.Context) {
	if len(a.mem.Requirements) == 0 {
		systemColor.Fprintln(a.out, "No requirements to score.")
		return
	}

	total := len(a.mem.Requirements)
	systemColor.Fprintf(a.out, "Scoring %d requirements...\n", total)

	var results []scoredRequirement
	for i, req := range a.mem.Requirements {
		fmt.Fprintf(a.out, "[%d/%d] %s\n", i+1, total, req.Content)
		score, err := a.checker.Analyze(ctx, req, a.mem)
		if err != nil {
			errorColor.Fprintf(a.out, "  analysis failed: %v\n", err)
			continue
		}
		results = append(results, scoredRequirement{req: req, score: score})
		a.mem.RecordReview(req, score.Total, score.Suggestions)
	}
	if len(results) == 0 {
		return
	}

	a.printQualitySummary(results)

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score.Total < results[j].score.Total
	})

	var critical []scoredRequirement
	var rest []scoredRequirement
	for _, r := range results {
		if r.score.Total < 0.6 {
			critical = append(critical, r)
		} else {
			rest = append(rest, r)
		}
	}

	if len(critical) > 0 {
		headingColor.Fprintln(a.out, "Needs attention first")
		for _, r := range critical {
			a.printQualityResult(r)
		}
	}
	for i := len(rest) - 1; i >= 0; i-- {
		a.printQualityResult(rest[i])
	}
}

func (a *App) printQualitySummary(results []scoredRequirement) {
	minScore, maxScore, sum := results[0].score.Total, results[0].score.Total, 0.0
	for _, r := range results {
		sum += r.score.Total
		if r.score.Total < minScore {
			minScore = r.score.Total
		}
		if r.score.Total > maxScore {
			maxScore = r.score.Total
		}
	}

	headingColor.Fprintln(a.out, "Quality summary")
	fmt.Fprintf(a.out, "  requirements analyzed: %d\n", len(results))
	fmt.Fprintf(a.out, "  average score: %.2f\n", sum/float64(len(results)))
	fmt.Fprintf(a.out, "  highest score: %.2f\n", maxScore)
	fmt.Fprintf(a.out, "  lowest score:  %.2f\n", minScore)

	bands := []struct {
		label string
		low   float64
		high  float64
	}{
		{"excellent (0.8-1.0)", 0.8, 1.01},
		{"good (0.6-0.8)", 0.6, 0.8},
		{"needs work (0.4-0.6)", 0.4, 0.6},
		{"poor (0.0-0.4)", 0.0, 0.4},
	}
	fmt.Fprintln(a.out, "  score distribution:")
	for _, band := range bands {
		count := 0
		for _, r := range results {
			if r.score.Total >= band.low && r.score.Total < band.high {
				count++
			}
		}
		percentage := float64(count) / float64(len(results)) * 100
		fmt.Fprintf(a.out, "    %-21s %d (%.1f%%) %s\n",
			band.label, count, percentage, strings.Repeat("#", int(percentage/5)))
	}
}

func (a *App) printQualityResult(r scoredRequirement) {
	fmt.Fprintf(a.out, "\n%.2f [%s] %s\n", r.score.Total, r.req.Type, r.req.Content)
	for _, suggestion := range r.score.Suggestions {
		fmt.Fprintf(a.out, "  - %s\n", suggestion)
	}
}

func (a *App) organize(ctx context.Context) {
	if len(a.mem.Requirements) == 0 {
		systemColor.Fprintln(a.out, "No requirements to organize.")
		return
	}

	result, err := a.organizer.Organize(ctx, a.mem)
	if err != nil {
		errorColor.Fprintf(a.out, "organize failed: %v\n", err)
		return
	}
	if len(result.Requirements) == 0 {
		systemColor.Fprintln(a.out, "Nothing to change.")
		return
	}

	headingColor.Fprintln(a.out, "Proposed changes")
	for _, change := range result.ChangesMade {
		fmt.Fprintf(a.out, "  [%v] %v\n", change["type"], change["description"])
	}
	for _, suggestion := range result.Suggestions {
		systemColor.Fprintf(a.out, "  ? %s\n", suggestion)
	}

	answer := strings.ToLower(a.promptLine("Apply these changes? (y/n)"))
	if answer != "y" && answer != "yes" {
		systemColor.Fprintln(a.out, "Left requirements unchanged.")
		return
	}

	a.mem.ReplaceRequirements(result.Requirements, result.ChangesMade)
	successColor.Fprintf(a.out, "requirements reorganized (%d items)\n", len(result.Requirements))
}

// switchProvider shows or replaces the model backend mid-session. Memory is
// untouched; only the engines talking to the model are rebuilt.
func (a *App) switchProvider(input string) {
	fields := strings.Fields(input)
	if len(fields) == 1 {
		fmt.Fprintf(a.out, "  provider: %s  model: %s\n", a.cfg.Llm.Provider, a.cfg.Llm.Model)
		return
	}

	providerName := strings.ToLower(fields[1])
	model := a.cfg.Llm.Model
	if len(fields) > 2 {
		model = fields[2]
	}

	provider, err := factory.NewLLMProvider(llm.Config{
		Provider:       providerName,
		Model:          model,
		APIKey:         a.cfg.Llm.APIKey,
		BaseURL:        a.cfg.Llm.BaseURL,
		APIVersion:     a.cfg.Llm.APIVersion,
		DeploymentName: a.cfg.Llm.DeploymentName,
		Temperature:    a.cfg.Llm.Temperature,
		MaxTokens:      a.cfg.Llm.MaxTokens,
	})
	if err != nil {
		errorColor.Fprintf(a.out, "switch failed: %v\n", err)
		return
	}

	a.cfg.Llm.Provider = providerName
	a.cfg.Llm.Model = model
	a.analyzer = service.NewAnalyzerService(provider, a.logger, a.cfg.Llm.Temperature, a.cfg.Llm.MaxTokens)
	a.checker = quality.NewChecker(provider)
	a.vision = vision.NewManager(provider)
	a.organizer = organizer.NewOrganizer(provider)
	a.editor = editor.NewEditor(provider)
	a.reviewer = reviewer.NewReviewer(provider, a.cfg.Llm.ReviewTokens)

	successColor.Fprintf(a.out, "switched to %s (%s)\n", providerName, model)
}

func (a *App) finish(ctx context.Context) {
	fmt.Fprintln(a.out)
	headingColor.Fprintln(a.out, "Session summary")
	a.printStatus()

	if len(a.mem.Requirements) == 0 && len(a.mem.UnderstandingHistory) == 0 {
		return
	}

	a.exportDocuments()
	a.saveSession()
}

func (a *App) promptLine(question string) string {
	systemColor.Fprintln(a.out, question)
	fmt.Fprint(a.out, "> ")
	if !a.in.Scan() {
		return ""
	}
	return strings.TrimSpace(a.in.Text())
}

func (a *App) promptIndex(question string, count int) (int, bool) {
	answer := a.promptLine(question)
	index, err := strconv.Atoi(answer)
	if err != nil || index < 1 || index > count {
		errorColor.Fprintln(a.out, "invalid selection")
		return 0, false
	}
	return index - 1, true
}

func orUnset(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
