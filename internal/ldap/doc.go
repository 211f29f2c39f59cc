/*
Package ldap implements the Active Directory operations behind the adops provider
and the adopsctl CLI.

# Architecture Overview

Components, leaf first:

  - NameValidator (names.go): character-set validation of short names and
    filter escaping.
  - ConnectionProvider (connection.go, identity.go, kerberos.go, krb5conf.go):
    resolves the bind identity for each call and opens one LDAPS session per
    operation.
  - SRVDiscovery (discovery.go): locates a domain controller when no server
    URL is configured.
  - Resolver (resolver.go): maps a short name and object kind to a DN.
  - Codec (dnsrecord.go): the dnsRecord attribute blob, a 24-byte header
    followed by an A or CNAME payload.
  - ZoneCatalog (zones.go): discovers the DNS zone containers of the domain.
  - RecordRepository (records.go): lists, creates and deletes dnsNode objects.
  - ObjectManager (objects.go, user.go, computer.go, group.go): provisions
    users and computers, edits group membership and resets passwords.
  - Directory (directory.go): the facade used by callers. Every method opens a
    session, performs one operation and releases the session before returning.

# Sessions

There is no connection pool. A Session is bound to exactly one identity: the
fallback service account from Config, or the Actor passed to the call. Sessions
never outlive the Directory method that opened them.

# Error Handling

Errors are typed: ValidationError, ConnectionError, NotFoundError,
ConflictError, DirectoryError and CodecError. Directory methods that mutate
state return an Outcome; bulk reads degrade to an empty result and a warning.
*/
package ldap
