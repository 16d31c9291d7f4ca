// Package sitelens provides a web-content extraction pipeline. It fetches
// pages, reduces them to their salient structural content, asks an LLM to
// extract structured data and produce a domain-tailored analysis, and for
// multi-URL tasks synthesizes a cross-site comparison that can be queried
// with follow-up questions.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, rod/, gemini/).
package sitelens
