// Package product models an installable package identified by
// (name, version, revision).
//
// Products are parsed from archive file names of the form
//
//	<name> <version> rev. <revision>[ <label>].zip
//
// for example "Sitecore 8.2 rev. 161221.zip" or
// "Web Forms for Marketers 8.2 rev. 160801 (for 8.2).zip". A product whose
// name is one of the parser's standalone names is a full product; every
// other product is an add-on module.
//
// Products are values and never change after parsing.
package product
