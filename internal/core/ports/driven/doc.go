// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - StateStore: Durable key-value storage for the serialised document
//   - ConfigStore: Application configuration and preferences
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Language model operations. Without it, AI assist is disabled.
//   - PromptStore: Prompt templates. Without it, built-in prompts are used.
//   - PDFRenderer: Headless browser printing. Without it, PDF export is disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
