// Package archive is a client for the archive's download API.
//
// Every item has a descriptor at <download_info_url>/<identifier>.xml. The
// body either says the item is "unavailable" (not staged yet), reports an
// "invalid item", or is an XML document listing renditions:
//
//	<download_info>
//	  <download label="highres">
//	    <part url="/iiif/.../KLAC00161000001.pdf"/>
//	  </download>
//	</download_info>
//
// Unavailable items are staged by requesting
// <queue_download_url>/<identifier>.xml. Part URLs are relative to the
// archive origin.
//
// The Client checks transport errors and HTTP status before anything looks
// at the body, so a failing request is never mistaken for a ready item.
// Failures are returned as *errors.Error and transient ones are retried
// according to the configured retry policy.
package archive
